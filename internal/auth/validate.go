package auth

import (
	"regexp"
	"unicode"
)

var (
	emailPattern    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
)

const (
	maxEmailLength    = 255
	minPasswordLength = 8
	// bcryptは72バイトを超える入力を扱えない
	maxPasswordBytes = 72
)

// バリデーションメッセージ
const (
	msgInvalidEmail    = "Invalid email format"
	msgInvalidUsername = "Username must be 3-30 characters and contain only letters, numbers, and underscores"
	msgWeakPassword    = "Password does not meet strength requirements"

	reasonPasswordTooShort = "Password must be at least 8 characters long"
	reasonPasswordTooLong  = "Password must be at most 72 bytes long"
	reasonPasswordNoUpper  = "Password must contain at least one uppercase letter"
	reasonPasswordNoLower  = "Password must contain at least one lowercase letter"
	reasonPasswordNoDigit  = "Password must contain at least one number"
)

// ValidEmail はメールアドレスの形式を検証する。
func ValidEmail(email string) bool {
	return len(email) <= maxEmailLength && emailPattern.MatchString(email)
}

// ValidUsername はユーザー名の長さと文字種を検証する。
func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// PasswordViolations はパスワード強度規則の違反理由を規則順に返す。
// 違反がない場合は空スライスを返す。
func PasswordViolations(password string) []string {
	var reasons []string

	if len([]rune(password)) < minPasswordLength {
		reasons = append(reasons, reasonPasswordTooShort)
	}
	if len(password) > maxPasswordBytes {
		reasons = append(reasons, reasonPasswordTooLong)
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		reasons = append(reasons, reasonPasswordNoUpper)
	}
	if !hasLower {
		reasons = append(reasons, reasonPasswordNoLower)
	}
	if !hasDigit {
		reasons = append(reasons, reasonPasswordNoDigit)
	}

	return reasons
}
