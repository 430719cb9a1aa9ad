package vault

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVault_RoundTrip(t *testing.T) {
	v := New([]byte("process-level-secret"))

	plaintext := []byte(`{"api_key":"k","api_secret":"s"}`)

	ciphertext, err := v.Encrypt(plaintext)
	require.NoError(t, err)
	require.NotContains(t, string(ciphertext), "api_secret")

	decrypted, err := v.Decrypt(ciphertext)
	require.NoError(t, err)
	require.Equal(t, plaintext, decrypted)
}

func TestVault_RandomSaltAndIV(t *testing.T) {
	v := New([]byte("secret"))

	a, err := v.Encrypt([]byte("same plaintext"))
	require.NoError(t, err)

	b, err := v.Encrypt([]byte("same plaintext"))
	require.NoError(t, err)

	require.False(t, bytes.Equal(a, b))
}

func TestVault_WrongSecretDoesNotDecrypt(t *testing.T) {
	ciphertext, err := New([]byte("right")).Encrypt([]byte("credentials"))
	require.NoError(t, err)

	decrypted, err := New([]byte("wrong")).Decrypt(ciphertext)
	if err == nil {
		// CBC without a MAC cannot always detect a wrong key; the padding
		// check catches most cases, and when it does not, the output must
		// still never equal the plaintext.
		require.NotEqual(t, []byte("credentials"), decrypted)
	}
}

func TestVault_TruncatedCiphertextRejected(t *testing.T) {
	v := New([]byte("secret"))

	_, err := v.Decrypt([]byte("short"))
	require.Error(t, err)

	ciphertext, err := v.Encrypt([]byte("credentials"))
	require.NoError(t, err)

	_, err = v.Decrypt(ciphertext[:len(ciphertext)-5])
	require.Error(t, err)
}
