package account

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/cobaemon/portfolio/pkg/session"
)

// Session keys for the in-flight login state. The names are part of the
// stored-session compatibility surface and must not change.
const (
	SessionKeyLoginCode     = "account_login_code"
	SessionKeyPendingUserID = "pending_login_user_id"
	SessionKeyNext          = "next"
)

// codeAlphabet avoids ambiguous characters; codes are compared exactly and
// case-sensitively, so only lowercase letters and digits are issued.
const codeAlphabet = "abcdefghjkmnpqrstuvwxyz23456789"

const codeLength = 6

// PendingCode is the session payload for a login-by-code challenge. Field
// names match the stored JSON shape.
type PendingCode struct {
	At             int64  `json:"at"`
	Email          string `json:"email"`
	FailedAttempts int    `json:"failed_attempts"`
	UserID         string `json:"user_id"`
	Code           string `json:"code"`
}

// Expired reports whether the code is past its redeemable window.
func (p PendingCode) Expired(ttl time.Duration) bool {
	return time.Now().After(time.Unix(p.At, 0).Add(ttl))
}

// GenerateLoginCode issues a fresh random code for the email challenge.
func GenerateLoginCode() (string, error) {
	buf := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// NewPendingCode builds the session payload for a just-issued login code.
func NewPendingCode(userID uuid.UUID, email, code string) PendingCode {
	return PendingCode{
		At:     time.Now().Unix(),
		Email:  email,
		UserID: userID.String(),
		Code:   code,
	}
}

// storePendingCode writes the challenge into the session.
func storePendingCode(sess *session.Session, p PendingCode) {
	sess.Set(SessionKeyLoginCode, map[string]any{
		"at":              p.At,
		"email":           p.Email,
		"failed_attempts": p.FailedAttempts,
		"user_id":         p.UserID,
		"code":            p.Code,
	})
}

// loadPendingCode reads the challenge back. Session data survives a redis
// round trip as map[string]any with float64 numbers, so decoding is tolerant
// of both the in-memory and the deserialized shapes.
func loadPendingCode(sess *session.Session) (PendingCode, bool) {
	raw, ok := sess.Get(SessionKeyLoginCode)
	if !ok {
		return PendingCode{}, false
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return PendingCode{}, false
	}

	var p PendingCode
	p.At = asInt64(m["at"])
	p.FailedAttempts = int(asInt64(m["failed_attempts"]))
	p.Email, _ = m["email"].(string)
	p.UserID, _ = m["user_id"].(string)
	p.Code, _ = m["code"].(string)
	return p, true
}

func clearPendingLogin(sess *session.Session) {
	sess.Delete(SessionKeyLoginCode)
	sess.Delete(SessionKeyPendingUserID)
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// recordFailure increments the failed-attempt counter and returns the number
// of attempts remaining under the given limit.
func recordFailure(sess *session.Session, p PendingCode, limit int) int {
	p.FailedAttempts++
	storePendingCode(sess, p)
	return limit - p.FailedAttempts
}
