package udaphttp

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/udap-tools/udap-client-app/udap"
)

const clientAssertionType = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"

// hl7B2BExtension identifies the requesting organization on B2B token
// requests, per the HL7 UDAP security IG.
type hl7B2BExtension struct {
	Version          string   `json:"version"`
	OrganizationID   string   `json:"organization_id"`
	OrganizationName string   `json:"organization_name,omitempty"`
	PurposeOfUse     []string `json:"purpose_of_use"`
}

// ClientCredentialsToken drives the B2B grant against the token endpoint.
func (c *Client) ClientCredentialsToken(ctx context.Context, scope string) (*udap.TokenResponse, error) {
	meta, err := c.meta(ctx)
	if err != nil {
		return nil, err
	}

	assertion, err := c.authenticationToken(meta.TokenEndpoint, true)
	if err != nil {
		return nil, err
	}

	form := url.Values{
		"grant_type":            {string(udap.FlowClientCredentials)},
		"scope":                 {scope},
		"client_assertion_type": {clientAssertionType},
		"client_assertion":      {assertion},
		"udap":                  {udapVersion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, meta.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("[ClientCredentialsToken] building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[ClientCredentialsToken] %s: %w: %w", meta.TokenEndpoint, udap.ErrTransport, err)
	}
	defer resp.Body.Close()

	body := readBody(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, &udap.TokenEndpointError{Status: resp.StatusCode, Body: body}
	}

	var token udap.TokenResponse
	if err := json.Unmarshal([]byte(body), &token); err != nil {
		return nil, fmt.Errorf("[ClientCredentialsToken] decoding token response: %w", err)
	}
	return &token, nil
}

// AuthorizationURL builds the authorize redirect and the anti-forgery state
// for the authorization-code grant. Requires metadata to have been discovered.
func (c *Client) AuthorizationURL(idpURL, scope, redirectURL string) (*udap.AuthorizeData, error) {
	c.mu.Lock()
	meta := c.metadata
	clientID := c.clientID
	c.mu.Unlock()
	if meta == nil {
		return nil, fmt.Errorf("[AuthorizationURL] metadata not discovered: %w", udap.ErrMetadata)
	}

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	conf := c.oauth2Config(meta, clientID, scope, redirectURL)
	opts := []oauth2.AuthCodeOption{}
	if idpURL != "" {
		// Tiered OAuth: hint which upstream identity provider to use.
		opts = append(opts, oauth2.SetAuthURLParam("idp", idpURL))
	}

	return &udap.AuthorizeData{
		AuthorizeURL: conf.AuthCodeURL(state, opts...),
		State:        state,
	}, nil
}

// ExchangeCode swaps an authorization code for a token, authenticating with a
// signed client assertion instead of a client secret.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURL string) (*udap.TokenResponse, error) {
	meta, err := c.meta(ctx)
	if err != nil {
		return nil, err
	}

	assertion, err := c.authenticationToken(meta.TokenEndpoint, false)
	if err != nil {
		return nil, err
	}

	conf := c.oauth2Config(meta, c.ClientID(), "", redirectURL)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	token, err := conf.Exchange(ctx, code,
		oauth2.SetAuthURLParam("client_assertion_type", clientAssertionType),
		oauth2.SetAuthURLParam("client_assertion", assertion),
		oauth2.SetAuthURLParam("udap", udapVersion),
	)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, &udap.TokenEndpointError{Status: retrieveErr.Response.StatusCode, Body: string(retrieveErr.Body)}
		}
		return nil, fmt.Errorf("[ExchangeCode] %s: %w: %w", meta.TokenEndpoint, udap.ErrTransport, err)
	}

	return &udap.TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
	}, nil
}

func (c *Client) oauth2Config(meta *udap.Metadata, clientID, scope, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURL,
		Scopes:      strings.Fields(scope),
		Endpoint: oauth2.Endpoint{
			AuthURL:  meta.AuthorizationEndpoint,
			TokenURL: meta.TokenEndpoint,
		},
	}
}

// authenticationToken signs the client authentication JWT presented at the
// token endpoint. B2B requests carry the hl7-b2b extension.
func (c *Client) authenticationToken(tokenEndpoint string, b2b bool) (string, error) {
	clientID := c.ClientID()
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": clientID,
		"sub": clientID,
		"aud": tokenEndpoint,
		"iat": now.Unix(),
		"exp": now.Add(statementLifetime).Unix(),
		"jti": uuid.New().String(),
	}
	if b2b {
		claims["extensions"] = map[string]hl7B2BExtension{
			"hl7-b2b": {
				Version:          "1",
				OrganizationID:   c.cfg.OrganizationID,
				OrganizationName: c.cfg.OrganizationName,
				PurposeOfUse:     []string{c.cfg.PurposeOfUse},
			},
		}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["x5c"] = []string{base64.StdEncoding.EncodeToString(c.cert.Raw)}

	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("[authenticationToken] signing: %w", err)
	}
	return signed, nil
}

func randomState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("[randomState] %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
