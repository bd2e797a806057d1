package credential

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Concern identifies an independent token-gated account transition.
type Concern string

const (
	ConcernVerification  Concern = "verification"
	ConcernEmailChange   Concern = "email_change"
	ConcernPasswordReset Concern = "password_reset"
)

var (
	// ErrTokenInvalid means the token is malformed, unsigned by us, or bound
	// to a different concern.
	ErrTokenInvalid = errors.New("credential token invalid")
	// ErrTokenExpired means the signature checked out but the expiry passed.
	ErrTokenExpired = errors.New("credential token expired")
)

// Issuer mints time-limited single-use credential tokens. Verification and
// email-change use signed HS256 tokens so the subject can be identified
// without a lookup; password reset uses opaque random tokens looked up by
// value. Single-use enforcement lives in the repository: every issued token
// is stored per concern and consumption is an atomic compare-and-clear.
type Issuer struct {
	secret []byte
}

// NewIssuer builds an issuer signing with the given secret.
func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret)}
}

// Claims describes the signed credential payload.
type Claims struct {
	SubjectID string  `json:"sub"`
	Concern   Concern `json:"concern"`
	jwt.RegisteredClaims
}

// IssueSigned mints an HS256 token bound to the subject and concern.
func (i *Issuer) IssueSigned(concern Concern, subjectID string, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)
	claims := &Claims{
		SubjectID: subjectID,
		Concern:   concern,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// DecodeSigned validates signature, expiry and concern binding. The stored
// value cross-check still happens at consumption time; a decoded token alone
// proves nothing about whether it is still spendable.
func (i *Issuer) DecodeSigned(concern Concern, tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Concern != concern {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// IssueOpaque mints a random hex token for concerns looked up by value.
func (i *Issuer) IssueOpaque(ttl time.Duration) (string, time.Time, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, err
	}
	return hex.EncodeToString(buf), time.Now().Add(ttl), nil
}
