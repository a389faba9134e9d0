package mcp

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/readmill/readmill-api/client"
	"github.com/readmill/readmill-api/mcp/internal/handlers"
	"github.com/readmill/readmill-api/pkg/logger"
)

// config holds all settings for the MCP server. Variables carry the prefix
// READMILL_MCP_, e.g. READMILL_MCP_ADDR=:9000 . The Readmill client itself
// is configured by READMILL_* (see client.LoadConfig).
type config struct {
	ServerName      string        `envconfig:"SERVER_NAME"        default:"readmill-mcp-server"`
	ServerVersion   string        `envconfig:"SERVER_VERSION"     default:"0.1.0"`
	LogLevel        string        `envconfig:"LOG_LEVEL"          default:"info"`
	Addr            string        `envconfig:"ADDR"               default:":11546"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT"   default:"10s"`
	HTTPReadTimeout time.Duration `envconfig:"HTTP_READ_TIMEOUT"  default:"5s"`
	HTTPIdleTimeout time.Duration `envconfig:"HTTP_IDLE_TIMEOUT"  default:"120s"`
	Stdio           *bool         `envconfig:"STDIO"`
}

func loadConfig() (*config, error) {
	var cfg config
	if err := envconfig.Process("READMILL_MCP", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// initLogger writes to stderr so stdout stays free for the stdio transport.
func (c *config) initLogger() {
	zerolog.SetGlobalLevel(parseLogLevel(c.LogLevel))
	log.Logger = logger.New(c.ServerName, os.Stderr).With().Caller().Logger()
}

func parseLogLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type toolRegisterer interface {
	RegisterTools(s *server.MCPServer) error
}

// NewServer builds an MCP server exposing the Readmill tools backed by c.
func NewServer(c *client.Client, name, version string) (*server.MCPServer, error) {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
	)

	for _, h := range []struct {
		name string
		toolRegisterer
	}{
		{"book", handlers.NewBookHandler(c)},
		{"read", handlers.NewReadHandler(c)},
		{"ping", handlers.NewPingHandler(c)},
		{"user", handlers.NewUserHandler(c)},
	} {
		if err := h.RegisterTools(s); err != nil {
			log.Error().Err(err).Str("handler", h.name).Msg("failed to register tools")
			return nil, err
		}
	}
	return s, nil
}

// RunMCPServer starts the MCP server using environment configuration.
func RunMCPServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.initLogger()

	clientCfg, err := client.LoadConfig()
	if err != nil {
		return err
	}
	var readmill *client.Client
	if clientCfg.Credentials().Valid() {
		readmill, err = client.New(clientCfg.BaseURL, clientCfg.Credentials(), clientCfg.Options()...)
	} else {
		log.Info().Str("base_url", clientCfg.BaseURL).Msg("no READMILL_TOKEN/READMILL_SECRET, using dev credentials")
		readmill, err = client.NewWithDevMode(clientCfg.BaseURL, clientCfg.Options()...)
	}
	if err != nil {
		log.Error().Stack().Err(err).Msg("failed to create client")
		return err
	}

	s, err := NewServer(readmill, cfg.ServerName, cfg.ServerVersion)
	if err != nil {
		return err
	}

	if shouldUseStdio(cfg) {
		log.Info().Msg("starting Readmill MCP server (stdio transport)")
		return server.ServeStdio(s)
	}
	return serveHTTP(cfg, s)
}

func serveHTTP(cfg *config, s *server.MCPServer) error {
	log.Info().Str("addr", cfg.Addr).Msg("starting Readmill MCP server (Streamable HTTP)")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	streamSrv := server.NewStreamableHTTPServer(
		s,
		server.WithEndpointPath("/mcp"),
		server.WithHeartbeatInterval(30*time.Second),
	)
	srv := &http.Server{
		Addr:        cfg.Addr,
		Handler:     streamSrv,
		ReadTimeout: cfg.HTTPReadTimeout,
		// No write deadline: SSE streams stay open.
		WriteTimeout: 0,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	shutdownComplete := make(chan struct{})
	go func() {
		defer close(shutdownComplete)

		sig, ok := <-sigChan
		if !ok {
			return
		}
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("error during HTTP server shutdown")
		}
		if err := streamSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("error during MCP server shutdown")
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-shutdownComplete
	log.Info().Msg("MCP server shutdown complete")
	return nil
}

// shouldUseStdio honours READMILL_MCP_STDIO when set, otherwise uses stdio
// when stdin is not a terminal (launched by another process).
func shouldUseStdio(cfg *config) bool {
	if cfg.Stdio != nil {
		return *cfg.Stdio
	}
	if fileInfo, err := os.Stdin.Stat(); err == nil {
		return (fileInfo.Mode() & os.ModeCharDevice) == 0
	}
	return false
}
