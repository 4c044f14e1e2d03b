package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailbeam/billing/internal/config"
	"github.com/mailbeam/billing/internal/logger"
)

func newTestService(t *testing.T) EncryptionService {
	cfg := config.GetDefaultConfig()
	log, err := logger.NewLogger(cfg)
	require.NoError(t, err)

	svc, err := NewEncryptionService(cfg, log)
	require.NoError(t, err)
	return svc
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	svc := newTestService(t)

	plaintexts := []string{
		"4111111111111111",
		"Jane Roe",
		"short",
		"value with spaces and símbolos",
	}
	for _, plaintext := range plaintexts {
		ciphertext, err := svc.Encrypt(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, ciphertext)

		decrypted, err := svc.Decrypt(ciphertext)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	}
}

func TestEncryptProducesUniqueCiphertexts(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.Encrypt("4111111111111111")
	require.NoError(t, err)
	second, err := svc.Encrypt("4111111111111111")
	require.NoError(t, err)

	// A random nonce makes every encryption distinct
	assert.NotEqual(t, first, second)
}

func TestEmptyStringPassesThrough(t *testing.T) {
	svc := newTestService(t)

	ciphertext, err := svc.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, ciphertext)

	plaintext, err := svc.Decrypt("")
	require.NoError(t, err)
	assert.Empty(t, plaintext)
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	svc := newTestService(t)

	ciphertext, err := svc.Encrypt("4111111111111111")
	require.NoError(t, err)

	tampered := []byte(ciphertext)
	tampered[len(tampered)-5] ^= 0x01

	_, err = svc.Decrypt(string(tampered))
	assert.Error(t, err)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Decrypt("not base64 at all!!!")
	assert.Error(t, err)

	_, err = svc.Decrypt("c2hvcnQ=")
	assert.Error(t, err)
}

func TestHashIsDeterministic(t *testing.T) {
	svc := newTestService(t)

	assert.Equal(t, svc.Hash("value"), svc.Hash("value"))
	assert.NotEqual(t, svc.Hash("value"), svc.Hash("other"))
	assert.Empty(t, svc.Hash(""))
}

func TestMaskCardNumber(t *testing.T) {
	assert.Equal(t, "****1111", MaskCardNumber("4111111111111111"))
	assert.Equal(t, "1111", MaskCardNumber("1111"))
	assert.Equal(t, "42", MaskCardNumber("42"))
}
