package access

import (
	"fmt"
	"unicode"

	"github.com/liamcoop/learningplan/learning"
)

// MaxTokenLength bounds the header value accepted as a token.
const MaxTokenLength = 256

// ValidateToken rejects tokens that cannot exist in storage so they never
// reach the repository. Every failure is ErrInvalidToken.
func ValidateToken(token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	if len(token) > MaxTokenLength {
		return ErrInvalidToken
	}
	for _, r := range token {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return ErrInvalidToken
		}
	}
	return nil
}

// ValidateUser checks the facts the evaluator relies on.
func ValidateUser(u learning.User) error {
	if u.TenureDays < 0 {
		return fmt.Errorf("user %d has negative tenure %d", u.UserID, u.TenureDays)
	}
	return nil
}
