package qrcode

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptRoundTrip(t *testing.T) {
	q := NewQRGenerator("secret", "https://bar.example/")
	ref := TabRef{CustomerID: "c1", EventID: "ev1"}

	token, err := q.Encrypt(ref)
	require.NoError(t, err)
	assert.NotContains(t, token, "c1")

	got, err := q.Decrypt(token)
	require.NoError(t, err)
	assert.Equal(t, ref, got)
}

func TestDecryptWithWrongSecretFails(t *testing.T) {
	token, err := NewQRGenerator("secret", "").Encrypt(TabRef{CustomerID: "c1", EventID: "ev1"})
	require.NoError(t, err)

	_, err = NewQRGenerator("other", "").Decrypt(token)
	assert.Error(t, err)

	_, err = NewQRGenerator("secret", "").Decrypt("c2hvcnQ=")
	assert.Error(t, err)
}

func TestTabURL(t *testing.T) {
	q := NewQRGenerator("secret", "https://bar.example/")
	link, err := q.TabURL(TabRef{CustomerID: "c1", EventID: "ev1"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://bar.example/tabs/c1?ref="))
}

func TestGenerateTabQRIsPNG(t *testing.T) {
	png, err := NewQRGenerator("secret", "http://localhost:8080").GenerateTabQR(TabRef{CustomerID: "c1", EventID: "ev1"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
