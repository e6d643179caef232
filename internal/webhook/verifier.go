package webhook

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"go.uber.org/zap"
)

// Verifier authenticates callbacks from the session gateway
type Verifier struct {
	token  string
	logger *zap.Logger
}

// NewVerifier creates a new webhook verifier
func NewVerifier(token string, logger *zap.Logger) *Verifier {
	return &Verifier{
		token:  token,
		logger: logger,
	}
}

// VerifyToken checks the shared-secret header. An empty configured token
// disables verification.
func (v *Verifier) VerifyToken(header string) bool {
	if v.token == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(header), []byte(v.token)) == 1
}

// VerifySignature verifies the optional request signature computed as
// sha256(timestamp + nonce + token + body)
func (v *Verifier) VerifySignature(timestamp, nonce, signature, body string) bool {
	if v.token == "" || signature == "" {
		return true
	}
	content := timestamp + nonce + v.token + body
	hash := sha256.Sum256([]byte(content))
	calculated := fmt.Sprintf("%x", hash)
	return subtle.ConstantTimeCompare([]byte(calculated), []byte(signature)) == 1
}
