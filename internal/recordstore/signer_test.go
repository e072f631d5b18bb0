package recordstore

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// verifySignature checks a base64 signature over msg with the public half
// of key.
func verifySignature(t *testing.T, key crypto.Signer, msg, sigB64 string) bool {
	t.Helper()
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	require.NoError(t, err)
	hashed := sha256.Sum256([]byte(msg))
	switch pub := key.Public().(type) {
	case *ecdsa.PublicKey:
		return ecdsa.VerifyASN1(pub, hashed[:], sig)
	case *rsa.PublicKey:
		return rsa.VerifyPKCS1v15(pub, crypto.SHA256, hashed[:], sig) == nil
	default:
		t.Fatalf("unexpected key type %T", pub)
		return false
	}
}

func TestFormatTimestamp_DropsFractionalSeconds(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 891_000_000, time.FixedZone("EST", -5*3600))
	assert.Equal(t, "2026-03-04T10:06:07Z", FormatTimestamp(at))
}

func TestBodyDigest(t *testing.T) {
	// sha256("") base64
	assert.Equal(t, "47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=", BodyDigest(nil))
}

func TestSign_DeterministicMessageAndVerifiableSignature(t *testing.T) {
	key := newECKey(t)
	signer := NewSigner("key-123", key)
	body := []byte(`{"operations":[]}`)
	path := "/database/1/iCloud.test/development/public/records/modify"
	at := time.Date(2026, 10, 18, 12, 0, 0, 500_000_000, time.UTC)

	first, err := signer.Sign(body, path, at)
	require.NoError(t, err)
	second, err := signer.Sign(body, path, at)
	require.NoError(t, err)

	want := "2026-10-18T12:00:00Z:" + BodyDigest(body) + ":" + path
	assert.Equal(t, want, first.Message)
	assert.Equal(t, first.Message, second.Message)
	assert.Equal(t, "key-123", first.KeyID)
	assert.Equal(t, "2026-10-18T12:00:00Z", first.Date)

	assert.True(t, verifySignature(t, key, want, first.Signature))
	assert.True(t, verifySignature(t, key, want, second.Signature))
	assert.False(t, verifySignature(t, key, want+"x", first.Signature))
}

func TestSign_RSAKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	signer := NewSigner("rsa-key", key)

	signed, err := signer.Sign([]byte("{}"), "/p", time.Unix(0, 0))
	require.NoError(t, err)
	assert.Equal(t, "1970-01-01T00:00:00Z:"+BodyDigest([]byte("{}"))+":/p", signed.Message)
	assert.True(t, verifySignature(t, key, signed.Message, signed.Signature))
}
