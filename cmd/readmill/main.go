package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/readmill/readmill-api/client"
	"github.com/readmill/readmill-api/pkg/devauth"
)

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	serviceURL string
	token      string
	secret     string
	debug      bool
	timeout    time.Duration
	retries    uint64
}

// defaultCommandTimeout bounds each command when READMILL_TIMEOUT is unset.
const defaultCommandTimeout = 30 * time.Second

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:           "readmill",
		Short:         "Command line access to the Readmill API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
			log.Logger = log.Output(zerolog.ConsoleWriter{
				Out:        cmd.ErrOrStderr(),
				TimeFormat: "2006-01-02 15:04:05",
				NoColor:    true,
			})
			if g.debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
				log.Debug().Msg("debug logging enabled")
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	cfg, err := client.LoadConfig()
	if err != nil {
		log.Warn().Err(err).Msg("ignoring invalid READMILL_* environment")
		cfg = client.Config{BaseURL: "http://localhost:11545"}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultCommandTimeout
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.serviceURL, "service-url", cfg.BaseURL, "Base URL of the Readmill API")
	pf.StringVar(&g.token, "token", cfg.Token, "OAuth access token (dev credentials when empty)")
	pf.StringVar(&g.secret, "secret", cfg.Secret, "OAuth token secret")
	pf.BoolVarP(&g.debug, "debug", "d", cfg.Debug, "Enable verbose debug output")
	pf.DurationVar(&g.timeout, "timeout", cfg.Timeout, "Per-command deadline, including retries")
	pf.Uint64Var(&g.retries, "retries", 0, "Retry retryable failures up to N times with exponential backoff")

	rootCmd.AddCommand(
		newBooksCmd(g),
		newSearchBooksCmd(g),
		newAddBookCmd(g),
		newCreateReadCmd(g),
		newUpdateReadCmd(g),
		newReadsCmd(g),
		newPingCmd(g),
		newUserCmd(g),
	)
	return rootCmd
}

func (g *globals) newClient() (*client.Client, error) {
	creds := client.Credentials{Token: g.token, Secret: g.secret}
	if g.token == "" && g.secret == "" {
		log.Debug().Msg("no credentials given, using dev credentials")
		creds = client.Credentials{Token: devauth.Token, Secret: devauth.Secret}
	}
	return client.New(g.serviceURL, creds, client.WithDebugLogging(g.debug), client.WithUserAgent("readmill-cli"))
}

// run executes op against a fresh client, retrying retryable failures when
// --retries is set, and prints the result as indented JSON.
func run[T any](cmd *cobra.Command, g *globals, name string, op func(context.Context, *client.Client) (T, error)) error {
	c, err := g.newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	var (
		out     T
		attempt int
	)
	start := time.Now()
	operation := func() error {
		attempt++
		res, err := op(ctx, c)
		if err != nil {
			if !client.IsRetryable(err) {
				return backoff.Permanent(err)
			}
			log.Debug().Err(err).Int("attempt", attempt).Str("command", name).Msg("retryable failure")
			return err
		}
		out = res
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), g.retries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		log.Error().Err(err).Str("command", name).Int("attempts", attempt).Dur("elapsed", time.Since(start)).Msg("request failed")
		return err
	}
	log.Debug().Str("command", name).Int("attempts", attempt).Dur("elapsed", time.Since(start)).Msg("request completed")

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func newBooksCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "books",
		Short: "List all books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, g, "books", func(ctx context.Context, c *client.Client) ([]client.Book, error) {
				return c.ListBooks(ctx)
			})
		},
	}
}

func newSearchBooksCmd(g *globals) *cobra.Command {
	var title, isbn string
	cmd := &cobra.Command{
		Use:   "search-books",
		Short: "Search books by title or ISBN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, g, "search-books", func(ctx context.Context, c *client.Client) ([]client.Book, error) {
				if cmd.Flags().Changed("isbn") {
					return c.SearchBooksByISBN(ctx, isbn)
				}
				return c.SearchBooksByTitle(ctx, title)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Title to search for")
	cmd.Flags().StringVar(&isbn, "isbn", "", "ISBN to search for")
	cmd.MarkFlagsMutuallyExclusive("title", "isbn")
	cmd.MarkFlagsOneRequired("title", "isbn")
	return cmd
}

func newAddBookCmd(g *globals) *cobra.Command {
	var req client.AddBookRequest
	cmd := &cobra.Command{
		Use:   "add-book",
		Short: "Add a book (an existing book with the same ISBN may be returned)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, g, "add-book", func(ctx context.Context, c *client.Client) (*client.Book, error) {
				return c.AddBook(ctx, req)
			})
		},
	}
	cmd.Flags().StringVar(&req.Title, "title", "", "Book title (required)")
	cmd.Flags().StringVar(&req.Author, "author", "", "Author")
	cmd.Flags().StringVar(&req.ISBN, "isbn", "", "ISBN")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newCreateReadCmd(g *globals) *cobra.Command {
	var (
		bookID  uint64
		state   string
		private bool
		appID   string
	)
	cmd := &cobra.Command{
		Use:   "create-read",
		Short: "Start a read of a book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := client.ParseReadState(state)
			if err != nil {
				return err
			}
			return run(cmd, g, "create-read", func(ctx context.Context, c *client.Client) (*client.Read, error) {
				return c.CreateRead(ctx, client.BookID(bookID), client.CreateReadRequest{
					State:         st,
					Private:       private,
					ApplicationID: appID,
				})
			})
		},
	}
	cmd.Flags().Uint64Var(&bookID, "book-id", 0, "Book ID (required)")
	cmd.Flags().StringVar(&state, "state", "reading", "interesting, reading, finished or abandoned")
	cmd.Flags().BoolVar(&private, "private", false, "Hide the read from public listings")
	cmd.Flags().StringVar(&appID, "application-id", "", "Application identifier")
	_ = cmd.MarkFlagRequired("book-id")
	return cmd
}

func newUpdateReadCmd(g *globals) *cobra.Command {
	var (
		readID  uint64
		state   string
		private bool
		remark  string
		appID   string
	)
	cmd := &cobra.Command{
		Use:   "update-read",
		Short: "Replace a read's state, privacy and closing remark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := client.ParseReadState(state)
			if err != nil {
				return err
			}
			return run(cmd, g, "update-read", func(ctx context.Context, c *client.Client) (*client.Read, error) {
				return c.UpdateRead(ctx, client.ReadID(readID), client.UpdateReadRequest{
					State:         st,
					Private:       private,
					ClosingRemark: remark,
					ApplicationID: appID,
				})
			})
		},
	}
	cmd.Flags().Uint64Var(&readID, "read-id", 0, "Read ID (required)")
	cmd.Flags().StringVar(&state, "state", "", "interesting, reading, finished or abandoned (required)")
	cmd.Flags().BoolVar(&private, "private", false, "Hide the read from public listings")
	cmd.Flags().StringVar(&remark, "closing-remark", "", "Closing remark")
	cmd.Flags().StringVar(&appID, "application-id", "", "Application identifier")
	_ = cmd.MarkFlagRequired("read-id")
	_ = cmd.MarkFlagRequired("state")
	return cmd
}

func newReadsCmd(g *globals) *cobra.Command {
	var (
		userID   uint64
		username string
	)
	cmd := &cobra.Command{
		Use:   "reads",
		Short: "List a user's public reads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, g, "reads", func(ctx context.Context, c *client.Client) ([]client.Read, error) {
				if username != "" {
					return c.PublicReadsForUsername(ctx, username)
				}
				return c.PublicReadsForUser(ctx, client.UserID(userID))
			})
		},
	}
	cmd.Flags().Uint64Var(&userID, "user-id", 0, "User ID")
	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.MarkFlagsMutuallyExclusive("user-id", "username")
	cmd.MarkFlagsOneRequired("user-id", "username")
	return cmd
}

func newPingCmd(g *globals) *cobra.Command {
	var (
		readID     uint64
		progress   int
		identifier string
		duration   time.Duration
		occurredAt string
	)
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Report reading progress on a read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			at := time.Now()
			if occurredAt != "" {
				parsed, err := time.Parse(time.RFC3339, occurredAt)
				if err != nil {
					return fmt.Errorf("--occurred-at: %w", err)
				}
				at = parsed
			}
			if identifier == "" {
				identifier = client.NewSessionID()
				log.Debug().Str("identifier", identifier).Msg("generated session id")
			}
			return run(cmd, g, "ping", func(ctx context.Context, c *client.Client) (*client.Ping, error) {
				return c.PingRead(ctx, client.ReadID(readID), client.PingRequest{
					Progress:   progress,
					Identifier: identifier,
					Duration:   duration,
					OccurredAt: at,
				})
			})
		},
	}
	cmd.Flags().Uint64Var(&readID, "read-id", 0, "Read ID (required)")
	cmd.Flags().IntVar(&progress, "progress", 0, "Percent complete, 1-100 (required)")
	cmd.Flags().StringVar(&identifier, "identifier", "", "Session identifier (generated when empty)")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Time spent reading since the last ping")
	cmd.Flags().StringVar(&occurredAt, "occurred-at", "", "RFC3339 time of the reading (default now)")
	_ = cmd.MarkFlagRequired("read-id")
	_ = cmd.MarkFlagRequired("progress")
	return cmd
}

func newUserCmd(g *globals) *cobra.Command {
	var (
		userID   uint64
		username string
	)
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Show a user by id or username",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, g, "user", func(ctx context.Context, c *client.Client) (*client.User, error) {
				if username != "" {
					return c.UserByUsername(ctx, username)
				}
				return c.User(ctx, client.UserID(userID))
			})
		},
	}
	cmd.Flags().Uint64Var(&userID, "id", 0, "User ID")
	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.MarkFlagsMutuallyExclusive("id", "username")
	cmd.MarkFlagsOneRequired("id", "username")
	return cmd
}
