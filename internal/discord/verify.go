package discord

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	HeaderSignature = "X-Signature-Ed25519"
	HeaderTimestamp = "X-Signature-Timestamp"
)

var ErrInvalidSignature = errors.New("invalid request signature")

// Verifier checks that interaction requests were signed by Discord.
type Verifier struct {
	publicKey ed25519.PublicKey
}

// NewVerifier parses the application's hex-encoded public key.
func NewVerifier(publicKeyHex string) (*Verifier, error) {
	key, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(key))
	}
	return &Verifier{publicKey: ed25519.PublicKey(key)}, nil
}

// Verify checks signatureHex over timestamp+body.
func (v *Verifier) Verify(signatureHex, timestamp string, body []byte) error {
	if signatureHex == "" || timestamp == "" {
		return ErrInvalidSignature
	}
	sig, err := hex.DecodeString(signatureHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return ErrInvalidSignature
	}

	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)
	if !ed25519.Verify(v.publicKey, msg, sig) {
		return ErrInvalidSignature
	}
	return nil
}
