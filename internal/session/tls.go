package session

import (
	"crypto/tls"
	"os"

	"github.com/okvist/tlstalk/internal/logging"
	"go.uber.org/zap"
)

// NewTLSConfig creates a server-role TLS configuration from a PEM
// certificate/key pair on disk.
//
// keyLogPath, when non-empty, names a file that receives per-session
// symmetric key material in NSS key log format so external tooling
// (Wireshark) can decrypt captures. It has no effect on protocol
// correctness.
func NewTLSConfig(certPath, keyPath, keyLogPath string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, newError(KindConfiguration, "load_keypair", err)
	}

	logging.Info("TLS configuration created from files",
		zap.String("cert", certPath),
		zap.String("key", keyPath),
	)

	return buildTLSConfig(cert, keyLogPath)
}

// NewTLSConfigFromMemory creates a server-role TLS configuration from an
// in-memory PEM certificate and key. This is used when the certificate is
// auto-generated and never written to disk.
func NewTLSConfigFromMemory(certPEM, keyPEM []byte, keyLogPath string) (*tls.Config, error) {
	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, newError(KindConfiguration, "load_keypair_memory", err)
	}

	logging.Info("TLS configuration created from in-memory certificate",
		zap.String("source", "auto-generated"),
	)

	return buildTLSConfig(cert, keyLogPath)
}

func buildTLSConfig(cert tls.Certificate, keyLogPath string) (*tls.Config, error) {
	config := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,

		// Log negotiated parameters once the handshake settles
		VerifyConnection: func(cs tls.ConnectionState) error {
			logging.LogTLSHandshake(
				cs.ServerName,
				cs.Version,
				cs.CipherSuite,
				cs.ServerName,
			)
			return nil
		},
	}

	if keyLogPath != "" {
		f, err := os.OpenFile(keyLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return nil, newError(KindConfiguration, "open_keylog", err)
		}
		config.KeyLogWriter = f
		logging.Warn("TLS key logging enabled, session keys are being written to disk",
			zap.String("keylog", keyLogPath),
		)
	}

	return config, nil
}

// GetTLSInfo returns human-readable TLS configuration information
func GetTLSInfo(config *tls.Config) map[string]interface{} {
	return map[string]interface{}{
		"min_version": "TLS 1.2",
		"num_certs":   len(config.Certificates),
		"key_logging": config.KeyLogWriter != nil,
	}
}
