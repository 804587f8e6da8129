package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveVaultTokenPrecedence(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token \n"), 0600))

	t.Run("inline token wins", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "inline-token", TokenFile: tokenFile})
		require.NoError(t, err)
		assert.Equal(t, "inline-token", token)
	})

	t.Run("token file is trimmed", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile})
		require.NoError(t, err)
		assert.Equal(t, "file-token", token)
	})

	t.Run("unreadable token file", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{TokenFile: filepath.Join(t.TempDir(), "missing")})
		assert.ErrorContains(t, err, "failed to read vault token file")
	})

	t.Run("no token configured", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{})
		assert.ErrorContains(t, err, "vault token is required")
	})

	t.Run("blank token file", func(t *testing.T) {
		blank := filepath.Join(t.TempDir(), "blank")
		require.NoError(t, os.WriteFile(blank, []byte(" \n\n"), 0600))
		_, err := resolveVaultToken(VaultConfig{TokenFile: blank})
		assert.ErrorContains(t, err, "vault token is required")
	})
}

func TestKV2DataUnwrap(t *testing.T) {
	data, err := kv2Data(&api.Secret{
		Data: map[string]any{
			"data": map[string]any{"api_key": "secret-value"},
		},
	}, "secret/data/careercatalyst/gemini")
	require.NoError(t, err)
	assert.Equal(t, "secret-value", data["api_key"])

	_, err = kv2Data(nil, "secret/data/missing")
	assert.ErrorContains(t, err, "secret not found")

	_, err = kv2Data(&api.Secret{Data: map[string]any{"data": "flat"}}, "secret/flat")
	assert.ErrorContains(t, err, "not in KVv2 format")
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", maskSecret(""))
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "****", maskSecret("12345678"))
	assert.Equal(t, "AIza****wxyz", maskSecret("AIzaSyExample-wxyz"))
}

func TestSplitKeyList(t *testing.T) {
	assert.Empty(t, splitKeyList(""))
	assert.Equal(t, []string{"k1", "k2", "k3"}, splitKeyList("k1, k2 ,k3"))
	assert.Equal(t, []string{"solo"}, splitKeyList("solo"))
}

func TestApplyGeminiKeyPreservesOperationOverrides(t *testing.T) {
	cfg := &Config{
		AI: AIConfig{
			Analyze: OperationAIConfig{APIKey: "analyze-override"},
		},
	}

	applyGeminiKeyToConfig(cfg, "vault-key")

	assert.Equal(t, "vault-key", cfg.AI.APIKey)
	assert.Equal(t, "analyze-override", cfg.AI.Analyze.APIKey)
	assert.Equal(t, "vault-key", cfg.AI.Assistant.APIKey)
}

func TestApplyVaultSecretsDisabledIsNoOp(t *testing.T) {
	cfg := &Config{Vault: VaultConfig{Enabled: false}}
	require.NoError(t, ApplyVaultSecrets(cfg, nil))
	assert.Empty(t, cfg.Server.APIKeys)
	assert.Empty(t, cfg.AI.APIKey)
}
