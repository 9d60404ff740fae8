// Package udaphttp is the HTTP-backed implementation of the udap.Client
// capability: well-known discovery with trust-anchor validation, signed
// dynamic client registration, and token requests for both grants. The
// orchestration core only reaches it through the udap.Client interface.
package udaphttp

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/udap-tools/udap-client-app/udap"
)

const wellKnownPath = "/.well-known/udap"

// External calls are unbounded upstream; the client imposes its own limit so
// a dead server surfaces as a transport error instead of a hang.
const requestTimeout = 30 * time.Second

var _ udap.ClientFactory = New

// Client talks UDAP to a single server base URL.
type Client struct {
	cfg     udap.ClientConfig
	http    *http.Client
	key     *rsa.PrivateKey
	cert    *x509.Certificate
	anchors *x509.CertPool

	mu       sync.Mutex
	clientID string
	metadata *udap.Metadata
}

// New constructs a Client from key material on disk. It performs no network
// calls; discovery happens on first use.
func New(cfg udap.ClientConfig) (udap.Client, error) {
	key, cert, err := loadClientCredentials(cfg.PrivateKeyFile, cfg.PrivateKeyPassword)
	if err != nil {
		return nil, err
	}
	anchors, err := loadTrustAnchors(cfg.TrustAnchorFile)
	if err != nil {
		return nil, err
	}
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: requestTimeout},
		key:      key,
		cert:     cert,
		anchors:  anchors,
		clientID: cfg.ClientID,
	}, nil
}

// DiscoverMetadata fetches the server's UDAP well-known document, validates
// its signed_metadata chain against the trust anchors, and caches the result.
func (c *Client) DiscoverMetadata(ctx context.Context) (*udap.Metadata, error) {
	wellKnownURL := c.cfg.ServerBaseURL + wellKnownPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wellKnownURL, nil)
	if err != nil {
		return nil, fmt.Errorf("[DiscoverMetadata] building request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[DiscoverMetadata] %s: %w: %w", wellKnownURL, udap.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("[DiscoverMetadata] %s returned %d: %w", wellKnownURL, resp.StatusCode, udap.ErrMetadata)
	}

	var meta udap.Metadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("[DiscoverMetadata] decoding %s: %w: %w", wellKnownURL, udap.ErrMetadata, err)
	}
	if meta.TokenEndpoint == "" || meta.RegistrationEndpoint == "" {
		return nil, fmt.Errorf("[DiscoverMetadata] %s: missing token or registration endpoint: %w", wellKnownURL, udap.ErrMetadata)
	}
	if err := c.validateSignedMetadata(&meta); err != nil {
		return nil, err
	}

	log.Debug().Str("server", c.cfg.ServerBaseURL).
		Strs("grant_types", meta.GrantTypesSupported).
		Bool("tiered_oauth", meta.SupportsTieredOAuth()).
		Msg("validated UDAP metadata")

	c.mu.Lock()
	c.metadata = &meta
	c.mu.Unlock()
	return &meta, nil
}

// meta returns the cached metadata, discovering it on first use.
func (c *Client) meta(ctx context.Context) (*udap.Metadata, error) {
	c.mu.Lock()
	m := c.metadata
	c.mu.Unlock()
	if m != nil {
		return m, nil
	}
	return c.DiscoverMetadata(ctx)
}

func (c *Client) ClientID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clientID
}

func (c *Client) SetClientID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clientID = id
}

func readBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil {
		return ""
	}
	return string(body)
}
