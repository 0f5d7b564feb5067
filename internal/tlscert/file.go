package tlscert

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
)

// fileManager serves an operator-supplied certificate. The pair is reloaded
// on every handshake, so rotated certificates are picked up without a
// restart.
type fileManager struct {
	cfg    Config
	logger *slog.Logger
}

func newFileManager(cfg Config, logger *slog.Logger) (Manager, error) {
	if cfg.CertFile == "" {
		return nil, fmt.Errorf("tls_cert_file is required when tls_cert_mode=file")
	}
	if cfg.KeyFile == "" {
		return nil, fmt.Errorf("tls_key_file is required when tls_cert_mode=file")
	}

	if err := checkReadableFile(cfg.CertFile); err != nil {
		return nil, fmt.Errorf("invalid certificate file: %w", err)
	}
	if err := checkReadableFile(cfg.KeyFile); err != nil {
		return nil, fmt.Errorf("invalid key file: %w", err)
	}
	if err := checkKeyPermissions(cfg.KeyFile); err != nil {
		return nil, fmt.Errorf("insecure key file permissions: %w", err)
	}

	if _, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile); err != nil {
		return nil, fmt.Errorf("failed to load certificate: %w", err)
	}

	return &fileManager{cfg: cfg, logger: logger}, nil
}

func (m *fileManager) GetTLSConfig() (*tls.Config, error) {
	return &tls.Config{
		MinVersion: MinTLSVersion,
		GetCertificate: func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
			cert, err := tls.LoadX509KeyPair(m.cfg.CertFile, m.cfg.KeyFile)
			if err != nil {
				m.logger.Error("failed to reload certificate",
					slog.String("cert_file", m.cfg.CertFile),
					slog.String("error", err.Error()))
				return nil, err
			}
			return &cert, nil
		},
	}, nil
}

func (m *fileManager) Description() string {
	return fmt.Sprintf("file-based (cert=%s, key=%s)", m.cfg.CertFile, m.cfg.KeyFile)
}

func (m *fileManager) Shutdown() error { return nil }

func checkReadableFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("file not accessible: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file")
	}
	if info.Size() == 0 {
		return fmt.Errorf("file is empty")
	}
	return nil
}

// checkKeyPermissions rejects keys readable by group or others.
func checkKeyPermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		return fmt.Errorf("key file has insecure permissions %o (should be 0600 or 0400)", mode)
	}
	return nil
}
