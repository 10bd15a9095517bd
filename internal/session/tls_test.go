package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okvist/tlstalk/internal/certgen"
)

func TestNewTLSConfigMissingFiles(t *testing.T) {
	_, err := NewTLSConfig("/nonexistent/cert.pem", "/nonexistent/key.pem", "")
	if err == nil {
		t.Fatal("NewTLSConfig() with missing files succeeded")
	}
	if !IsConfiguration(err) {
		t.Errorf("error = %v, want configuration kind", err)
	}
}

func TestNewTLSConfigFromFiles(t *testing.T) {
	cert, err := certgen.GenerateSelfSigned(certgen.DefaultParams("localhost"))
	if err != nil {
		t.Fatalf("GenerateSelfSigned() error = %v", err)
	}

	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")
	if err := cert.WriteFiles(certPath, keyPath); err != nil {
		t.Fatalf("WriteFiles() error = %v", err)
	}

	conf, err := NewTLSConfig(certPath, keyPath, "")
	if err != nil {
		t.Fatalf("NewTLSConfig() error = %v", err)
	}
	if len(conf.Certificates) != 1 {
		t.Errorf("Certificates = %d, want 1", len(conf.Certificates))
	}
	if conf.KeyLogWriter != nil {
		t.Error("KeyLogWriter set without a keylog path")
	}
}

func TestNewTLSConfigGarbagePEM(t *testing.T) {
	_, err := NewTLSConfigFromMemory([]byte("not a certificate"), []byte("not a key"), "")
	if err == nil {
		t.Fatal("NewTLSConfigFromMemory() with garbage PEM succeeded")
	}
	if !IsConfiguration(err) {
		t.Errorf("error = %v, want configuration kind", err)
	}
}

func TestNewTLSConfigKeyLog(t *testing.T) {
	cert, err := certgen.GenerateSelfSigned(certgen.DefaultParams("localhost"))
	if err != nil {
		t.Fatalf("GenerateSelfSigned() error = %v", err)
	}

	keyLogPath := filepath.Join(t.TempDir(), "keys.log")
	conf, err := NewTLSConfigFromMemory(cert.CertPEM, cert.KeyPEM, keyLogPath)
	if err != nil {
		t.Fatalf("NewTLSConfigFromMemory() error = %v", err)
	}
	if conf.KeyLogWriter == nil {
		t.Fatal("KeyLogWriter not set")
	}

	info, err := os.Stat(keyLogPath)
	if err != nil {
		t.Fatalf("keylog file not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("keylog permissions = %o, want 0600", perm)
	}
}

func TestErrorKinds(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		name   string
		err    error
		isConf bool
		isHS   bool
		isStrm bool
	}{
		{"configuration", newError(KindConfiguration, "load_keypair", base), true, false, false},
		{"handshake", newError(KindHandshake, "handshake", base), false, true, false},
		{"stream", newError(KindStream, "accept", base), false, false, true},
		{"plain error", base, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConfiguration(tt.err); got != tt.isConf {
				t.Errorf("IsConfiguration() = %v, want %v", got, tt.isConf)
			}
			if got := IsHandshake(tt.err); got != tt.isHS {
				t.Errorf("IsHandshake() = %v, want %v", got, tt.isHS)
			}
			if got := IsStream(tt.err); got != tt.isStrm {
				t.Errorf("IsStream() = %v, want %v", got, tt.isStrm)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	base := errors.New("underlying")
	err := newError(KindStream, "read", base)
	if !errors.Is(err, base) {
		t.Error("errors.Is could not reach the wrapped error")
	}
}
