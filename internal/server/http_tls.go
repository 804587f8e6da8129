package server

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"

	"careercatalyst/internal/observability"
)

// configureTLS prepares the HTTP server for the configured TLS mode. In
// "server" and "mutual" modes the certificate store is loaded and its
// watcher started; "disabled" leaves the server on plain HTTP.
func (s *Server) configureTLS(httpServer *http.Server, om *observability.ObservabilityManager) error {
	addr := httpServer.Addr

	switch s.TLSConfig.Mode {
	case "disabled":
		fmt.Printf("Starting server on http://%s\n", addr)
		fmt.Println("TLS mode: Disabled (HTTP only)")
		return nil
	case "server":
		fmt.Printf("Starting server with HTTPS (server-only TLS) on https://%s\n", addr)
		fmt.Println("TLS mode: Server-only (no client certificates required)")
	case "mutual":
		fmt.Printf("Starting server with mTLS (mutual TLS) on https://%s\n", addr)
		fmt.Println("TLS mode: Mutual (client certificates required)")
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", s.TLSConfig.Mode)
	}

	if err := s.setupCertStore(om); err != nil {
		return err
	}

	tlsConfig, err := s.buildTLSConfig()
	if err != nil {
		return fmt.Errorf("failed to set up TLS: %w", err)
	}
	httpServer.TLSConfig = tlsConfig
	return nil
}

// setupCertStore loads the server certificate and starts the file watcher
// when auto-reload is enabled
func (s *Server) setupCertStore(om *observability.ObservabilityManager) error {
	store := newCertStore(&s.TLSConfig, om, s.Logger)

	if err := store.Load(); err != nil {
		return fmt.Errorf("failed to load TLS certificates: %w", err)
	}
	if err := store.StartWatcher(); err != nil {
		return err
	}
	s.Certs = store

	if s.TLSConfig.AutoReload.Enabled {
		fmt.Println("TLS auto-reload: ENABLED")
		fmt.Printf("  - Watching %s and %s for changes\n", s.TLSConfig.CertFile, s.TLSConfig.KeyFile)
	}
	return nil
}

// buildTLSConfig assembles the tls.Config serving certificates through the
// store, so reloads take effect without a restart
func (s *Server) buildTLSConfig() (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion:     s.minTLSVersion(),
		GetCertificate: s.Certs.GetCertificate,
	}

	if s.TLSConfig.Mode != "mutual" {
		tlsConfig.ClientAuth = tls.NoClientCert
		return tlsConfig, nil
	}

	pool, err := s.loadClientCAPool()
	if err != nil {
		return nil, err
	}
	tlsConfig.ClientCAs = pool
	tlsConfig.ClientAuth = s.clientAuthPolicy()
	return tlsConfig, nil
}

func (s *Server) minTLSVersion() uint16 {
	if s.TLSConfig.MinVersion == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}

// clientAuthPolicy maps the configured policy; unset defaults to the
// strictest option since mutual mode was asked for
func (s *Server) clientAuthPolicy() tls.ClientAuthType {
	switch s.TLSConfig.ClientAuthPolicy {
	case "request":
		return tls.RequestClientCert
	case "verify":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert
	}
}

// loadClientCAPool reads the CA bundle used to verify client certificates
func (s *Server) loadClientCAPool() (*x509.CertPool, error) {
	if s.TLSConfig.CAFile == "" {
		return nil, fmt.Errorf("CA certificate file is required for mutual TLS mode")
	}

	pem, err := os.ReadFile(s.TLSConfig.CAFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("failed to append CA cert")
	}
	return pool, nil
}
