package cryptox

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key := testKey(t)

	inputs := [][]byte{
		{},
		[]byte("hello world"),
		bytes.Repeat([]byte{0x00, 0xff}, 4096),
	}
	for _, in := range inputs {
		ct, iv, err := Encrypt(in, key)
		require.NoError(t, err)

		out, err := Decrypt(ct, iv, key)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(in, out))
	}
}

func TestEncrypt_FreshIVPerCall(t *testing.T) {
	key := testKey(t)

	ct1, iv1, err := Encrypt([]byte("same"), key)
	require.NoError(t, err)
	ct2, iv2, err := Encrypt([]byte("same"), key)
	require.NoError(t, err)

	assert.NotEqual(t, iv1, iv2)
	assert.NotEqual(t, ct1, ct2)
}

func TestDecrypt_WrongKeyFails(t *testing.T) {
	ct, iv, err := Encrypt([]byte("secret lab result"), testKey(t))
	require.NoError(t, err)

	out, err := Decrypt(ct, iv, testKey(t))
	assert.ErrorIs(t, err, ErrDecrypt)
	assert.Nil(t, out)
}

func TestDecrypt_CorruptedInput(t *testing.T) {
	key := testKey(t)
	ct, iv, err := Encrypt([]byte("payload"), key)
	require.NoError(t, err)

	raw, _ := hex.DecodeString(ct)
	raw[0] ^= 0x01
	tampered := hex.EncodeToString(raw)

	tests := []struct {
		name string
		ct   string
		iv   string
	}{
		{name: "tampered ciphertext", ct: tampered, iv: iv},
		{name: "non-hex ciphertext", ct: "zz", iv: iv},
		{name: "non-hex iv", ct: ct, iv: "not-hex"},
		{name: "short iv", ct: ct, iv: iv[:8]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decrypt(tt.ct, tt.iv, key)
			assert.ErrorIs(t, err, ErrDecrypt)
		})
	}
}

func TestEncrypt_BadKeySize(t *testing.T) {
	_, _, err := Encrypt([]byte("x"), []byte("short"))
	assert.ErrorIs(t, err, ErrKeySize)
}

func TestParseKey(t *testing.T) {
	raw := "0123456789abcdef0123456789abcdef"
	k, err := ParseKey(raw)
	require.NoError(t, err)
	assert.Equal(t, []byte(raw), k)

	hexKey := hex.EncodeToString(bytes.Repeat([]byte{0xab}, KeySize))
	k, err = ParseKey(hexKey)
	require.NoError(t, err)
	assert.Len(t, k, KeySize)

	_, err = ParseKey("too-short")
	assert.ErrorIs(t, err, ErrKeySize)
}

func TestRandomToken(t *testing.T) {
	a, err := RandomToken(32)
	require.NoError(t, err)
	b, err := RandomToken(32)
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
