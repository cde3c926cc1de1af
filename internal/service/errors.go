package service

import "errors"

// 业务错误。处理器根据 errors.Is 决定提示消息和状态码。
var (
	ErrInvalidUsername      = errors.New("username must be at least 3 characters long")
	ErrInvalidPassword      = errors.New("password must be at least 6 characters long")
	ErrPasswordMismatch     = errors.New("passwords do not match")
	ErrUsernameTaken        = errors.New("username already exists")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrIncorrectPassword    = errors.New("incorrect current password")
	ErrUserNotFound         = errors.New("user not found")

	ErrEmptyTitle      = errors.New("task title is empty")
	ErrInvalidPriority = errors.New("priority must be an integer")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrInvalidField    = errors.New("invalid field")
	ErrInvalidValue    = errors.New("invalid value")
	ErrTaskNotFound    = errors.New("task not found")

	ErrInternalServer = errors.New("internal server error")
)

// GenericErrorMessage 是存储错误时展示给用户的通用提示。
const GenericErrorMessage = "An error occurred while processing your request."

// userMessages 把业务错误映射为展示给用户的文本
var userMessages = []struct {
	err error
	msg string
}{
	{ErrInvalidUsername, "Username must be at least 3 characters long."},
	{ErrInvalidPassword, "Password must be at least 6 characters long."},
	{ErrPasswordMismatch, "Passwords do not match!"},
	{ErrUsernameTaken, "Username already exists!"},
	{ErrAuthenticationFailed, "Invalid username or password"},
	{ErrIncorrectPassword, "Incorrect current password."},
	{ErrEmptyTitle, "Please enter a task title."},
	{ErrInvalidPriority, "Priority must be a whole number."},
	{ErrInvalidField, "Invalid field."},
	{ErrInvalidValue, "Invalid value."},
	{ErrTaskNotFound, "Task not found."},
}

// UserMessage 返回错误对应的用户提示；未知错误一律返回通用提示，不暴露细节。
func UserMessage(err error) string {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return GenericErrorMessage
}
