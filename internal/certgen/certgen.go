// Package certgen generates self-signed server certificates so a session
// can be brought up without provisioning files first. Generated material
// stays in memory unless the caller writes it out.
package certgen

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"time"
)

// Params holds parameters for generating a server certificate.
type Params struct {
	// CommonName is the CN field.
	CommonName string
	// Organization is the O field.
	Organization string
	// Hosts are the Subject Alternative Names (DNS names or IPs as text).
	Hosts []string
	// ValidDays is certificate validity in days.
	ValidDays int
}

// DefaultParams returns Params suitable for a localhost session.
func DefaultParams(host string) Params {
	hosts := []string{"localhost"}
	if host != "" && host != "localhost" {
		hosts = append(hosts, host)
	}
	return Params{
		CommonName:   "tlstalk",
		Organization: "tlstalk",
		Hosts:        hosts,
		ValidDays:    365,
	}
}

// ServerCert is a generated self-signed server certificate.
type ServerCert struct {
	// CertPEM is the certificate in PEM format
	CertPEM []byte
	// KeyPEM is the private key in PEM format
	KeyPEM []byte
	// Certificate is the parsed x509 certificate
	Certificate *x509.Certificate
	// PrivateKey is the RSA private key
	PrivateKey *rsa.PrivateKey
}

// GenerateSelfSigned generates a self-signed server certificate:
// RSA 2048-bit key, SHA-256 signature, serverAuth extended key usage,
// SANs from params.
func GenerateSelfSigned(params Params) (*ServerCert, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("generate serial: %w", err)
	}

	validDays := params.ValidDays
	if validDays <= 0 {
		validDays = 365
	}
	notBefore := time.Now()
	notAfter := notBefore.AddDate(0, 0, validDays)

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{params.Organization},
			CommonName:   params.CommonName,
		},
		NotBefore: notBefore,
		NotAfter:  notAfter,

		KeyUsage:    x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},

		DNSNames: params.Hosts,

		BasicConstraintsValid: true,
		IsCA:                  false,
	}

	// Self-signed: the template is its own issuer
	certDER, err := x509.CreateCertificate(
		rand.Reader,
		&template,
		&template,
		&privateKey.PublicKey,
		privateKey,
	)
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}

	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, fmt.Errorf("parse certificate: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: certDER,
	})
	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})

	return &ServerCert{
		CertPEM:     certPEM,
		KeyPEM:      keyPEM,
		Certificate: cert,
		PrivateKey:  privateKey,
	}, nil
}

// WriteFiles writes the certificate and key PEM to the given paths. The key
// file is created with owner-only permissions.
func (c *ServerCert) WriteFiles(certPath, keyPath string) error {
	if err := os.WriteFile(certPath, c.CertPEM, 0644); err != nil {
		return fmt.Errorf("write certificate: %w", err)
	}
	if err := os.WriteFile(keyPath, c.KeyPEM, 0600); err != nil {
		return fmt.Errorf("write key: %w", err)
	}
	return nil
}
