package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptSecretsRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	secrets := map[string]string{
		EnvOpenAIAPIKey:    "sk-test-openai",
		EnvAnthropicAPIKey: "sk-ant-test123",
	}

	require.NoError(t, EncryptSecretsFile(tmpDir, "test-password-12345", secrets))

	info, err := os.Stat(filepath.Join(tmpDir, ProjectConfigDir, secretsFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	decrypted, err := DecryptSecretsFile(tmpDir, "test-password-12345")
	require.NoError(t, err)
	assert.Equal(t, secrets, decrypted)
}

func TestDecryptWithWrongPassword(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, EncryptSecretsFile(tmpDir, "correct-password", map[string]string{"K": "v"}))

	_, err := DecryptSecretsFile(tmpDir, "wrong-password")
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestDecryptFixesPermissions(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, EncryptSecretsFile(tmpDir, "pw", map[string]string{"K": "v"}))
	path := filepath.Join(tmpDir, ProjectConfigDir, secretsFileName)
	require.NoError(t, os.Chmod(path, 0o644))

	_, err := DecryptSecretsFile(tmpDir, "pw")
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestCorruptedSecretsFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, ProjectConfigDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ProjectConfigDir, secretsFileName), []byte("corrupted"), 0o600))

	_, err := DecryptSecretsFile(tmpDir, "any-password")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too small")
}

func TestSecretsFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	assert.False(t, SecretsFileExists(tmpDir))

	require.NoError(t, EncryptSecretsFile(tmpDir, "pw", map[string]string{}))
	assert.True(t, SecretsFileExists(tmpDir))
}

func TestSaveSecretsToFile(t *testing.T) {
	tmpDir := t.TempDir()
	SetDecryptedSecrets(nil)
	t.Cleanup(func() { SetDecryptedSecrets(nil) })

	SetSecret("B_KEY", "b")
	SetSecret("A_KEY", "a")
	assert.Equal(t, []string{"A_KEY", "B_KEY"}, GetDecryptedSecretNames())

	require.NoError(t, SaveSecretsToFile(tmpDir, "pw"))
	decrypted, err := DecryptSecretsFile(tmpDir, "pw")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A_KEY": "a", "B_KEY": "b"}, decrypted)
}

func TestGetSecretPrecedence(t *testing.T) {
	t.Cleanup(func() { SetDecryptedSecrets(nil) })
	t.Setenv("TEST_SECRET", "from-env-var")

	SetDecryptedSecrets(map[string]string{"TEST_SECRET": "from-secrets-file"})
	secret, err := GetSecret("TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "from-secrets-file", secret)

	SetDecryptedSecrets(map[string]string{"OTHER_SECRET": "other"})
	secret, err = GetSecret("TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "from-env-var", secret)

	t.Setenv("TEST_SECRET", "")
	_, err = GetSecret("TEST_SECRET")
	assert.Error(t, err)
}
