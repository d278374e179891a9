package clightning

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Config locates a c-lightning-REST server.
type Config struct {
	// URL is the REST base url, for example https://127.0.0.1:3001.
	URL string
	// Macaroon is the hex encoded access macaroon. MacaroonPath is read when
	// it is empty.
	Macaroon     string
	MacaroonPath string
	TLSCertPath  string
	// TLSSkipVerify accepts any server certificate. The REST server uses a
	// self signed certificate by default.
	TLSSkipVerify bool
	// Websocket is the url of the invoice feed. Invoice subscriptions are
	// not supported without it.
	Websocket  string
	MaxRetries int
}

func (c Config) Validate() error {
	if c.URL == "" {
		return errors.New("missing rest url")
	}
	if _, err := url.Parse(c.URL); err != nil {
		return fmt.Errorf("invalid rest url: %w", err)
	}
	if c.Macaroon == "" && c.MacaroonPath == "" {
		return errors.New("missing macaroon")
	}
	if c.Websocket != "" {
		u, err := url.Parse(c.Websocket)
		if err != nil {
			return fmt.Errorf("invalid websocket url: %w", err)
		}
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return fmt.Errorf("websocket url must use ws or wss, got %q", u.Scheme)
		}
	}
	return nil
}

// macaroonHex returns the macaroon in the hex form the REST server expects.
// A file holding the binary macaroon is hex encoded, a file already holding
// hex is used as is.
func (c Config) macaroonHex() (string, error) {
	if c.Macaroon != "" {
		return c.Macaroon, nil
	}
	b, err := os.ReadFile(c.MacaroonPath)
	if err != nil {
		return "", fmt.Errorf("could not read macaroon: %w", err)
	}
	s := strings.TrimSpace(string(b))
	if _, err := hex.DecodeString(s); err == nil && s != "" {
		return s, nil
	}
	return hex.EncodeToString(b), nil
}

func (c Config) tlsConfig() (*tls.Config, error) {
	if c.TLSSkipVerify {
		return &tls.Config{InsecureSkipVerify: true}, nil //nolint:gosec
	}
	if c.TLSCertPath == "" {
		return nil, nil
	}
	pem, err := os.ReadFile(c.TLSCertPath)
	if err != nil {
		return nil, fmt.Errorf("could not read tls cert: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificate found in %s", c.TLSCertPath)
	}
	return &tls.Config{RootCAs: pool}, nil
}
