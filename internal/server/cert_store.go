package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"sync"
	"time"

	"careercatalyst/internal/config"
	ccErrors "careercatalyst/internal/errors"
	"careercatalyst/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CertReloadMetrics tracks certificate reload activity for health reporting
type CertReloadMetrics struct {
	ReloadCount        int64
	ReloadSuccessCount int64
	ReloadFailureCount int64
	LastReloadTime     time.Time
	LastReloadSuccess  bool
	LastReloadError    string
}

// certStore holds the active server certificate loaded from files and
// swaps it atomically when the watcher reports a change on disk.
type certStore struct {
	mu sync.RWMutex

	tlsConfig *config.TLSConfig

	current *tls.Certificate
	expiry  time.Time

	metrics CertReloadMetrics
	watcher *CertWatcher

	om     *observability.ObservabilityManager
	logger *ccErrors.Logger
}

// newCertStore creates a certificate store for the given TLS configuration
func newCertStore(tlsCfg *config.TLSConfig, om *observability.ObservabilityManager, logger *ccErrors.Logger) *certStore {
	return &certStore{
		tlsConfig: tlsCfg,
		om:        om,
		logger:    logger,
	}
}

// Load reads the certificate and key files and makes them the active pair
func (cs *certStore) Load() error {
	if cs.tlsConfig.CertFile == "" || cs.tlsConfig.KeyFile == "" {
		return fmt.Errorf("TLS certificate and key files are required")
	}

	cert, err := tls.LoadX509KeyPair(cs.tlsConfig.CertFile, cs.tlsConfig.KeyFile)
	if err != nil {
		return fmt.Errorf("failed to load server cert/key from files: %w", err)
	}

	expiry, err := leafExpiry(&cert)
	if err != nil {
		return err
	}

	cs.mu.Lock()
	cs.current = &cert
	cs.expiry = expiry
	cs.mu.Unlock()

	cs.recordExpiryMetric(expiry)

	return nil
}

// leafExpiry parses the leaf certificate to obtain its NotAfter time
func leafExpiry(cert *tls.Certificate) (time.Time, error) {
	if len(cert.Certificate) == 0 {
		return time.Time{}, fmt.Errorf("certificate chain is empty")
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse leaf certificate: %w", err)
	}
	return leaf.NotAfter, nil
}

// GetCertificate serves the current certificate during TLS handshakes
func (cs *certStore) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	if cs.current == nil {
		return nil, fmt.Errorf("no server certificate loaded")
	}
	return cs.current, nil
}

// CheckExpiry returns the time remaining until the active certificate expires
func (cs *certStore) CheckExpiry() (time.Duration, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	if cs.current == nil {
		return 0, fmt.Errorf("no server certificate loaded")
	}
	return time.Until(cs.expiry), nil
}

// StartWatcher starts the file watcher when auto-reload is enabled
func (cs *certStore) StartWatcher() error {
	if !cs.tlsConfig.AutoReload.Enabled {
		return nil
	}

	watcher, err := NewCertWatcher(
		cs.tlsConfig.CertFile,
		cs.tlsConfig.KeyFile,
		cs.tlsConfig.CAFile,
		cs.tlsConfig.AutoReload.DebounceDelay,
		cs.reload,
		cs.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create certificate watcher: %w", err)
	}

	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start certificate watcher: %w", err)
	}

	cs.watcher = watcher
	return nil
}

// reload is the watcher callback. Failures keep the previous certificate
// active so in-flight traffic is never dropped.
func (cs *certStore) reload() {
	err := cs.Load()

	cs.mu.Lock()
	cs.metrics.ReloadCount++
	cs.metrics.LastReloadTime = time.Now()
	if err != nil {
		cs.metrics.ReloadFailureCount++
		cs.metrics.LastReloadSuccess = false
		cs.metrics.LastReloadError = err.Error()
	} else {
		cs.metrics.ReloadSuccessCount++
		cs.metrics.LastReloadSuccess = true
		cs.metrics.LastReloadError = ""
	}
	cs.mu.Unlock()

	cs.recordReloadMetric(err == nil)

	if err != nil {
		cs.logger.LogError(err, "Failed to reload TLS certificates, keeping previous pair")
		return
	}
	cs.logger.Info("TLS certificates reloaded successfully",
		"cert_file", cs.tlsConfig.CertFile)
}

// Stop stops the file watcher if one is running
func (cs *certStore) Stop() error {
	if cs.watcher == nil {
		return nil
	}
	return cs.watcher.Stop()
}

// Watcher exposes the underlying file watcher for health reporting
func (cs *certStore) Watcher() *CertWatcher {
	return cs.watcher
}

// Metrics returns a snapshot of the reload counters
func (cs *certStore) Metrics() CertReloadMetrics {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.metrics
}

func (cs *certStore) recordReloadMetric(success bool) {
	if cs.om == nil {
		return
	}
	m := cs.om.GetMetrics()
	if m == nil || m.CertReloadCount == nil {
		return
	}
	m.CertReloadCount.Add(context.Background(), 1, metric.WithAttributes(
		attribute.Bool("success", success)))
}

func (cs *certStore) recordExpiryMetric(expiry time.Time) {
	if cs.om == nil {
		return
	}
	m := cs.om.GetMetrics()
	if m == nil || m.CertExpiryTime == nil {
		return
	}
	m.CertExpiryTime.Record(context.Background(), time.Until(expiry).Seconds(), metric.WithAttributes(
		attribute.String("cert_file", cs.tlsConfig.CertFile)))
}
