package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTLSConfig(t *testing.T) {
	tests := []struct {
		name    string
		tls     TLSConfig
		wantErr string
	}{
		{
			name: "disabled",
			tls:  TLSConfig{Mode: "disabled"},
		},
		{
			name: "server mode",
			tls: TLSConfig{
				Mode:       "server",
				CertFile:   "certs/api.pem",
				KeyFile:    "certs/api.key",
				MinVersion: "1.2",
			},
		},
		{
			name: "mutual mode",
			tls: TLSConfig{
				Mode:             "mutual",
				CertFile:         "certs/api.pem",
				KeyFile:          "certs/api.key",
				CAFile:           "certs/clients-ca.pem",
				ClientAuthPolicy: "require",
				MinVersion:       "1.3",
			},
		},
		{
			name:    "unknown mode",
			tls:     TLSConfig{Mode: "tls13-only"},
			wantErr: "invalid TLS mode: tls13-only",
		},
		{
			name:    "server mode without key pair",
			tls:     TLSConfig{Mode: "server"},
			wantErr: "TLS certificate and key files are required for server mode",
		},
		{
			name:    "server mode with certificate only",
			tls:     TLSConfig{Mode: "server", CertFile: "certs/api.pem"},
			wantErr: "TLS certificate and key files are required for server mode",
		},
		{
			name: "mutual mode without CA",
			tls: TLSConfig{
				Mode:     "mutual",
				CertFile: "certs/api.pem",
				KeyFile:  "certs/api.key",
			},
			wantErr: "CA certificate file is required for mutual TLS mode",
		},
		{
			name: "unsupported minimum version",
			tls: TLSConfig{
				Mode:       "server",
				CertFile:   "certs/api.pem",
				KeyFile:    "certs/api.key",
				MinVersion: "1.0",
			},
			wantErr: "invalid TLS minVersion: 1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Server: ServerConfig{TLS: tt.tls}}
			err := cfg.ValidateTLSConfig()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateClientAuthPolicy(t *testing.T) {
	for _, policy := range []string{"", "require", "request", "verify"} {
		assert.NoError(t, validateClientAuthPolicy(TLSConfig{ClientAuthPolicy: policy}),
			"policy %q should be accepted", policy)
	}

	err := validateClientAuthPolicy(TLSConfig{ClientAuthPolicy: "optional"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be 'require', 'request', or 'verify'")
}

func TestValidateTLSVersion(t *testing.T) {
	for _, version := range []string{"", "1.2", "1.3"} {
		assert.NoError(t, validateTLSVersion(TLSConfig{MinVersion: version}),
			"version %q should be accepted", version)
	}

	assert.ErrorContains(t, validateTLSVersion(TLSConfig{MinVersion: "1.1"}),
		"must be '1.2' or '1.3'")
}
