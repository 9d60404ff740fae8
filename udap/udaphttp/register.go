package udaphttp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/udap-tools/udap-client-app/udap"
)

const (
	udapVersion        = "1"
	statementLifetime  = 5 * time.Minute
	tokenAuthMethodJWT = "private_key_jwt"
)

type registrationBody struct {
	SoftwareStatement string   `json:"software_statement"`
	Certifications    []string `json:"certifications,omitempty"`
	UDAP              string   `json:"udap"`
}

type registrationResult struct {
	ClientID string `json:"client_id"`
	Scope    string `json:"scope"`
}

// Register submits a signed software statement to the server's registration
// endpoint. Non-2xx statuses are reported through the response so the caller
// can decide how to surface them.
func (c *Client) Register(ctx context.Context, reg udap.Registration) (*udap.RegistrationResponse, error) {
	meta, err := c.meta(ctx)
	if err != nil {
		return nil, err
	}

	statement, err := c.softwareStatement(meta.RegistrationEndpoint, reg.Fields())
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(registrationBody{SoftwareStatement: statement, UDAP: udapVersion})
	if err != nil {
		return nil, fmt.Errorf("[Register] encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, meta.RegistrationEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("[Register] building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[Register] %s: %w: %w", meta.RegistrationEndpoint, udap.ErrTransport, err)
	}
	defer resp.Body.Close()

	body := readBody(resp.Body)
	result := &udap.RegistrationResponse{Status: resp.StatusCode, Body: body}
	if result.Issued() {
		var issued registrationResult
		if err := json.Unmarshal([]byte(body), &issued); err != nil {
			return nil, fmt.Errorf("[Register] decoding registration response: %w", err)
		}
		result.ClientID = issued.ClientID
		result.Scope = issued.Scope
	}

	log.Debug().Str("grant_type", string(reg.GrantType())).
		Int("status", result.Status).
		Msg("dynamic client registration response")
	return result, nil
}

// softwareStatement builds and signs the registration JWT, carrying the
// client certificate in the x5c header.
func (c *Client) softwareStatement(registrationEndpoint string, fields udap.RegistrationFields) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":                        fields.SubjectAltName,
		"sub":                        fields.SubjectAltName,
		"aud":                        registrationEndpoint,
		"iat":                        now.Unix(),
		"exp":                        now.Add(statementLifetime).Unix(),
		"jti":                        uuid.New().String(),
		"client_name":                fields.ClientName,
		"grant_types":                fields.GrantTypes,
		"response_types":             fields.ResponseTypes,
		"contacts":                   fields.Contacts,
		"scope":                      fields.Scope,
		"token_endpoint_auth_method": tokenAuthMethodJWT,
	}
	if len(fields.RedirectURIs) > 0 {
		claims["redirect_uris"] = fields.RedirectURIs
	}
	if fields.LogoURI != "" {
		claims["logo_uri"] = fields.LogoURI
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["x5c"] = []string{base64.StdEncoding.EncodeToString(c.cert.Raw)}

	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("[softwareStatement] signing: %w", err)
	}
	return signed, nil
}
