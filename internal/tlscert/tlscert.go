// Package tlscert provides the server's TLS certificate sources: operator
// supplied cert/key files, or a generated self-signed pair for development.
package tlscert

import (
	"crypto/tls"
	"fmt"
	"log/slog"
)

// MinTLSVersion applies to every server configuration this package builds.
const MinTLSVersion = tls.VersionTLS13

// CertMode selects the certificate source.
type CertMode string

const (
	CertModeFile       CertMode = "file"
	CertModeSelfSigned CertMode = "selfsigned"
)

// Config holds certificate source settings. CertFile and KeyFile apply to
// file mode; the SelfSigned fields to selfsigned mode.
type Config struct {
	Mode CertMode

	CertFile string
	KeyFile  string

	SelfSignedCertDir string
	SelfSignedHosts   []string
}

// Manager hands the HTTP server its TLS configuration.
type Manager interface {
	GetTLSConfig() (*tls.Config, error)

	// Description names the certificate source for startup logs.
	Description() string

	Shutdown() error
}

// NewManager picks the manager for cfg.Mode.
func NewManager(cfg Config, logger *slog.Logger) (Manager, error) {
	switch cfg.Mode {
	case CertModeFile:
		return newFileManager(cfg, logger)
	case CertModeSelfSigned:
		return newSelfSignedManager(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported TLS certificate mode: %s (valid modes: file, selfsigned)", cfg.Mode)
	}
}
