package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"sponsorengine/internal/domain"
)

// nonceLifetime is the width of one validity window. A nonce stays valid for
// between one and two windows, because verification accepts the current and
// the previous window.
const nonceLifetime = 12 * time.Hour

// hmacNonce issues and verifies anti-forgery tokens scoped to an action
// family and user. The token is an HMAC-SHA256 over action, user, and the
// current time window, so it needs no server-side storage.
type hmacNonce struct {
	secret []byte
	now    func() time.Time
}

// NewHMACNonce returns a nonce issuer/verifier keyed with the given secret.
func NewHMACNonce(secret string) interface {
	domain.NonceIssuer
	domain.NonceVerifier
} {
	return &hmacNonce{secret: []byte(secret), now: time.Now}
}

func (n *hmacNonce) IssueNonce(action, userID string) string {
	return n.compute(action, userID, n.window(0))
}

func (n *hmacNonce) VerifyNonce(nonce, action, userID string) bool {
	if nonce == "" {
		return false
	}
	current := n.compute(action, userID, n.window(0))
	if hmac.Equal([]byte(nonce), []byte(current)) {
		return true
	}
	previous := n.compute(action, userID, n.window(-1))
	return hmac.Equal([]byte(nonce), []byte(previous))
}

func (n *hmacNonce) window(offset int64) int64 {
	return n.now().Unix()/int64(nonceLifetime.Seconds()) + offset
}

func (n *hmacNonce) compute(action, userID string, window int64) string {
	mac := hmac.New(sha256.New, n.secret)
	fmt.Fprintf(mac, "%s|%s|%d", action, userID, window)
	return hex.EncodeToString(mac.Sum(nil))[:16]
}
