package service

import "unicode/utf8"

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

// ValidateUsername 检查用户名非空且至少 3 个字符。
func ValidateUsername(username string) error {
	if username == "" || utf8.RuneCountInString(username) < MinUsernameLength {
		return ErrInvalidUsername
	}
	return nil
}

// ValidatePassword 检查密码至少 6 个字符。
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrInvalidPassword
	}
	return nil
}
