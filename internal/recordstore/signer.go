package recordstore

import (
	"crypto"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"
)

const (
	HeaderKeyID     = "X-Apple-CloudKit-Request-KeyID"
	HeaderDate      = "X-Apple-CloudKit-Request-ISO8601Date"
	HeaderSignature = "X-Apple-CloudKit-Request-SignatureV1"

	timestampLayout = "2006-01-02T15:04:05Z"
)

// SignedRequest carries the values that authenticate one request.
type SignedRequest struct {
	KeyID     string
	Date      string
	Digest    string
	Message   string
	Signature string
}

// Signer implements the server-to-server signing scheme: the message
// "{date}:{base64 sha256(body)}:{path}" signed with SHA-256 by the tenant key.
type Signer struct {
	keyID string
	key   crypto.Signer
}

func NewSigner(keyID string, key crypto.Signer) *Signer {
	return &Signer{keyID: keyID, key: key}
}

// FormatTimestamp renders t in UTC with second precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(timestampLayout)
}

// BodyDigest is the base64 SHA-256 of the exact request body bytes.
func BodyDigest(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// SigningMessage joins the three signed components with colons.
func SigningMessage(date, digest, path string) string {
	return date + ":" + digest + ":" + path
}

// Sign computes the headers for body sent to path at time at. ECDSA keys
// produce an ASN.1 DER signature, RSA keys PKCS#1 v1.5.
func (s *Signer) Sign(body []byte, path string, at time.Time) (SignedRequest, error) {
	date := FormatTimestamp(at)
	digest := BodyDigest(body)
	msg := SigningMessage(date, digest, path)

	hashed := sha256.Sum256([]byte(msg))
	sig, err := s.key.Sign(rand.Reader, hashed[:], crypto.SHA256)
	if err != nil {
		return SignedRequest{}, fmt.Errorf("recordstore: sign request: %w", err)
	}
	return SignedRequest{
		KeyID:     s.keyID,
		Date:      date,
		Digest:    digest,
		Message:   msg,
		Signature: base64.StdEncoding.EncodeToString(sig),
	}, nil
}
