package server

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careercatalyst/internal/config"
	"careercatalyst/internal/errors"
)

// writeSelfSignedCert generates a self-signed certificate valid for the
// given duration and writes the PEM pair into dir
func writeSelfSignedCert(t *testing.T, dir string, validFor time.Duration) (certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "localhost"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(validFor),
		KeyUsage:     x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     []string{"localhost"},
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err)

	certFile = filepath.Join(dir, "server.crt")
	keyFile = filepath.Join(dir, "server.key")

	certOut, err := os.Create(certFile)
	require.NoError(t, err)
	require.NoError(t, pem.Encode(certOut, &pem.Block{Type: "CERTIFICATE", Bytes: derBytes}))
	require.NoError(t, certOut.Close())

	keyBytes, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	keyOut, err := os.Create(keyFile)
	require.NoError(t, err)
	require.NoError(t, pem.Encode(keyOut, &pem.Block{Type: "EC PRIVATE KEY", Bytes: keyBytes}))
	require.NoError(t, keyOut.Close())

	return certFile, keyFile
}

func newTestCertStore(t *testing.T, tlsCfg *config.TLSConfig) *certStore {
	t.Helper()

	logger, err := errors.New("error")
	require.NoError(t, err)

	return newCertStore(tlsCfg, nil, logger)
}

func TestCertStoreLoadAndServe(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeSelfSignedCert(t, dir, 30*24*time.Hour)

	store := newTestCertStore(t, &config.TLSConfig{
		Mode:     "server",
		CertFile: certFile,
		KeyFile:  keyFile,
	})

	require.NoError(t, store.Load())

	cert, err := store.GetCertificate(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, cert.Certificate)

	remaining, err := store.CheckExpiry()
	require.NoError(t, err)
	assert.Greater(t, remaining, 29*24*time.Hour)
}

func TestCertStoreLoadMissingFiles(t *testing.T) {
	store := newTestCertStore(t, &config.TLSConfig{
		Mode:     "server",
		CertFile: "/nonexistent/server.crt",
		KeyFile:  "/nonexistent/server.key",
	})

	require.Error(t, store.Load())
}

func TestCertStoreRequiresFiles(t *testing.T) {
	store := newTestCertStore(t, &config.TLSConfig{Mode: "server"})
	require.Error(t, store.Load())
}

func TestCertStoreGetCertificateBeforeLoad(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeSelfSignedCert(t, dir, time.Hour)

	store := newTestCertStore(t, &config.TLSConfig{
		CertFile: certFile,
		KeyFile:  keyFile,
	})

	_, err := store.GetCertificate(nil)
	require.Error(t, err)
}

func TestCertStoreReloadPicksUpNewCertificate(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeSelfSignedCert(t, dir, 24*time.Hour)

	store := newTestCertStore(t, &config.TLSConfig{
		Mode:     "server",
		CertFile: certFile,
		KeyFile:  keyFile,
	})
	require.NoError(t, store.Load())

	// Replace the pair with a longer-lived certificate and reload
	writeSelfSignedCert(t, dir, 60*24*time.Hour)
	store.reload()

	metrics := store.Metrics()
	assert.Equal(t, int64(1), metrics.ReloadCount)
	assert.Equal(t, int64(1), metrics.ReloadSuccessCount)
	assert.True(t, metrics.LastReloadSuccess)

	remaining, err := store.CheckExpiry()
	require.NoError(t, err)
	assert.Greater(t, remaining, 30*24*time.Hour)
}

func TestCertStoreReloadFailureKeepsPreviousPair(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeSelfSignedCert(t, dir, 24*time.Hour)

	store := newTestCertStore(t, &config.TLSConfig{
		Mode:     "server",
		CertFile: certFile,
		KeyFile:  keyFile,
	})
	require.NoError(t, store.Load())

	// Corrupt the key file so the reload fails
	require.NoError(t, os.WriteFile(keyFile, []byte("not a key"), 0o600))
	store.reload()

	metrics := store.Metrics()
	assert.Equal(t, int64(1), metrics.ReloadFailureCount)
	assert.False(t, metrics.LastReloadSuccess)
	assert.NotEmpty(t, metrics.LastReloadError)

	// Previous certificate remains active
	cert, err := store.GetCertificate(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, cert.Certificate)
}

func TestCertWatcherStartStop(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeSelfSignedCert(t, dir, 24*time.Hour)

	logger, err := errors.New("error")
	require.NoError(t, err)

	watcher, err := NewCertWatcher(certFile, keyFile, "", 10*time.Millisecond, func() {}, logger)
	require.NoError(t, err)

	require.NoError(t, watcher.Start())
	assert.True(t, watcher.IsRunning())
	assert.ElementsMatch(t, []string{certFile, keyFile}, watcher.GetWatchedFiles())

	require.NoError(t, watcher.Stop())
	assert.False(t, watcher.IsRunning())
}
