package client

// Credentials is an OAuth access token and its secret, obtained elsewhere
// (the handshake is not part of this package).
type Credentials struct {
	Token  string
	Secret string
}

// Valid reports whether both halves are present.
func (c Credentials) Valid() bool {
	return c.Token != "" && c.Secret != ""
}

// String hides the secret.
func (c Credentials) String() string {
	if !c.Valid() {
		return "Credentials(empty)"
	}
	return "Credentials(token=" + redact(c.Token) + ")"
}

func redact(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
