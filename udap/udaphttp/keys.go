package udaphttp

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"golang.org/x/crypto/pkcs12"
)

// loadClientCredentials decodes the PKCS#12 bundle holding the client's
// signing key and certificate.
func loadClientCredentials(file, password string) (*rsa.PrivateKey, *x509.Certificate, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, fmt.Errorf("[loadClientCredentials] reading %s: %w", file, err)
	}

	key, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return nil, nil, fmt.Errorf("[loadClientCredentials] decoding %s: %w", file, err)
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, nil, fmt.Errorf("[loadClientCredentials] %s: private key is not RSA", file)
	}
	return rsaKey, cert, nil
}

// loadTrustAnchors reads the PEM-encoded trust anchor file into a cert pool.
func loadTrustAnchors(file string) (*x509.CertPool, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("[loadTrustAnchors] reading %s: %w", file, err)
	}

	pool := x509.NewCertPool()
	added := 0
	for block, rest := pem.Decode(data); block != nil; block, rest = pem.Decode(rest) {
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("[loadTrustAnchors] parsing certificate in %s: %w", file, err)
		}
		pool.AddCert(cert)
		added++
	}
	if added == 0 {
		return nil, fmt.Errorf("[loadTrustAnchors] no certificates found in %s", file)
	}
	return pool, nil
}
