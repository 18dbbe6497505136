package domain

// RoleSponsorshipManager is the role claim required to review EOIs, manage
// levels, and link sponsors.
const RoleSponsorshipManager = "sponsorship_manager"

// TokenVerifier verifies a bearer token and returns the authenticated user ID
// and role claims.
type TokenVerifier interface {
	Verify(token string) (userID string, roles []string, err error)
}

// NonceVerifier verifies an anti-forgery token scoped to an action family and
// user. Nonces are issued out-of-band when the admin screens are rendered.
type NonceVerifier interface {
	VerifyNonce(nonce, action, userID string) bool
}

// NonceIssuer issues an anti-forgery token for an action family and user.
type NonceIssuer interface {
	IssueNonce(action, userID string) string
}
