package udaphttp

import (
	"crypto/x509"
	"encoding/base64"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/udap-tools/udap-client-app/internal/utils"
	"github.com/udap-tools/udap-client-app/udap"
)

// validateSignedMetadata verifies the signed_metadata JWS: the x5c header
// must chain to a configured trust anchor and the signature must verify with
// the leaf certificate's key.
func (c *Client) validateSignedMetadata(meta *udap.Metadata) error {
	if meta.SignedMetadata == "" {
		return fmt.Errorf("[validateSignedMetadata] %s: no signed_metadata present: %w", c.cfg.ServerBaseURL, udap.ErrMetadata)
	}

	_, err := jwt.Parse(meta.SignedMetadata, c.x5cKeyFunc,
		jwt.WithValidMethods([]string{"RS256", "RS384"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("[validateSignedMetadata] %s: %w: %w", c.cfg.ServerBaseURL, udap.ErrMetadata, err)
	}
	return nil
}

// x5cKeyFunc extracts the certificate chain from the token's x5c header,
// verifies it against the trust anchors, and returns the leaf's public key.
func (c *Client) x5cKeyFunc(token *jwt.Token) (interface{}, error) {
	raw, ok := token.Header["x5c"].([]interface{})
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("missing x5c header")
	}
	chain := utils.ToStringSlice(raw)
	if len(chain) != len(raw) {
		return nil, fmt.Errorf("malformed x5c entry")
	}

	certs := make([]*x509.Certificate, 0, len(chain))
	for _, encoded := range chain {
		der, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decoding x5c entry: %w", err)
		}
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, fmt.Errorf("parsing x5c certificate: %w", err)
		}
		certs = append(certs, cert)
	}

	intermediates := x509.NewCertPool()
	for _, cert := range certs[1:] {
		intermediates.AddCert(cert)
	}
	if _, err := certs[0].Verify(x509.VerifyOptions{
		Roots:         c.anchors,
		Intermediates: intermediates,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	}); err != nil {
		return nil, fmt.Errorf("certificate chain does not reach a trust anchor: %w", err)
	}

	return certs[0].PublicKey, nil
}
