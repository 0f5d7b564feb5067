package tlscert

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/tanglisha/text-pair/internal/setutil"
)

const (
	selfSignedCertName = "server.crt"
	selfSignedKeyName  = "server.key"
	selfSignedValidity = 365 * 24 * time.Hour
)

var defaultSelfSignedHosts = []string{"localhost", "127.0.0.1", "::1"}

// selfSignedManager generates and serves a development certificate. The pair
// lives under SelfSignedCertDir and is regenerated when expired or when the
// configured hosts change.
type selfSignedManager struct {
	cfg      Config
	logger   *slog.Logger
	certPath string
	keyPath  string
}

func newSelfSignedManager(cfg Config, logger *slog.Logger) (Manager, error) {
	if len(cfg.SelfSignedHosts) == 0 {
		cfg.SelfSignedHosts = defaultSelfSignedHosts
	}

	if err := os.MkdirAll(cfg.SelfSignedCertDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create certificate directory: %w", err)
	}

	certPath := filepath.Join(cfg.SelfSignedCertDir, selfSignedCertName)
	keyPath := filepath.Join(cfg.SelfSignedCertDir, selfSignedKeyName)

	usable := false
	if fileExists(certPath) && fileExists(keyPath) {
		var err error
		usable, err = certificateUsable(certPath, keyPath, cfg.SelfSignedHosts)
		if err != nil {
			return nil, err
		}
	}

	if usable {
		logger.Info("using existing self-signed certificate",
			slog.String("cert_path", certPath))
	} else {
		logger.Info("generating self-signed certificate",
			slog.String("cert_path", certPath),
			slog.String("key_path", keyPath),
			slog.Any("hosts", cfg.SelfSignedHosts))

		if err := generateCertificate(certPath, keyPath, cfg.SelfSignedHosts); err != nil {
			return nil, fmt.Errorf("failed to generate self-signed certificate: %w", err)
		}

		logger.Warn("self-signed certificate generated - not suitable for production",
			slog.String("cert_path", certPath))
	}

	return &selfSignedManager{
		cfg:      cfg,
		logger:   logger,
		certPath: certPath,
		keyPath:  keyPath,
	}, nil
}

func (m *selfSignedManager) GetTLSConfig() (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(m.certPath, m.keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load self-signed certificate: %w", err)
	}

	return &tls.Config{
		MinVersion:   MinTLSVersion,
		Certificates: []tls.Certificate{cert},
	}, nil
}

func (m *selfSignedManager) Description() string {
	return fmt.Sprintf("self-signed (cert=%s) - DEV ONLY", m.certPath)
}

func (m *selfSignedManager) Shutdown() error { return nil }

func generateCertificate(certPath, keyPath string, hosts []string) error {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return fmt.Errorf("failed to generate RSA key: %w", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return fmt.Errorf("failed to generate serial number: %w", err)
	}

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{"TextPAIR (Self-Signed)"},
			CommonName:   "localhost",
		},
		// NotBefore is backdated to absorb clock skew between hosts.
		NotBefore:             time.Now().Add(-5 * time.Minute),
		NotAfter:              time.Now().Add(selfSignedValidity),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}

	for _, host := range hosts {
		if ip := net.ParseIP(host); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, host)
		}
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	if err := os.WriteFile(certPath, certPEM, 0644); err != nil {
		return fmt.Errorf("failed to write certificate: %w", err)
	}

	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privateKey)})
	if err := os.WriteFile(keyPath, keyPEM, 0600); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}

	return nil
}

// certificateUsable reports whether the stored pair parses, sits inside its
// validity window, loads as a key pair, and covers exactly the configured
// hosts.
func certificateUsable(certPath, keyPath string, hosts []string) (bool, error) {
	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return false, fmt.Errorf("failed to read self-signed certificate: %w", err)
	}

	block, _ := pem.Decode(certPEM)
	if block == nil || block.Type != "CERTIFICATE" {
		return false, fmt.Errorf("invalid certificate PEM in %s", certPath)
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return false, fmt.Errorf("failed to parse self-signed certificate: %w", err)
	}

	now := time.Now()
	if now.Before(cert.NotBefore) || now.After(cert.NotAfter) {
		return false, nil
	}
	if !certCoversHosts(cert, hosts) {
		return false, nil
	}
	if _, err := tls.LoadX509KeyPair(certPath, keyPath); err != nil {
		return false, nil
	}

	return true, nil
}

// certCoversHosts compares the certificate's names against the configured
// hosts as unordered sets, DNS names and IPs separately.
func certCoversHosts(cert *x509.Certificate, hosts []string) bool {
	var wantDNS, wantIPs []string
	for _, host := range hosts {
		if ip := net.ParseIP(host); ip != nil {
			wantIPs = append(wantIPs, ip.String())
			continue
		}
		wantDNS = append(wantDNS, host)
	}

	gotIPs := make([]string, 0, len(cert.IPAddresses))
	for _, ip := range cert.IPAddresses {
		gotIPs = append(gotIPs, ip.String())
	}

	return setutil.Equal(wantDNS, cert.DNSNames) && setutil.Equal(wantIPs, gotIPs)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
