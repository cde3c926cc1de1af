package service

import (
	"context"
	"errors"
	"fmt"

	"todo-app/internal/domain"
	"todo-app/internal/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 负责用户认证相关的业务逻辑。
// 会话本身由调用方维护，这里只处理账户和密码。
type AuthService struct {
	userRepo   repository.UserRepository
	bcryptCost int
}

// NewAuthService 创建 AuthService 实例。
// bcryptCost 超出 bcrypt 允许范围时使用 bcrypt.DefaultCost。
func NewAuthService(userRepo repository.UserRepository, bcryptCost int) *AuthService {
	if userRepo == nil {
		panic("UserRepository cannot be nil for AuthService")
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:   userRepo,
		bcryptCost: bcryptCost,
	}
}

// Register 处理用户注册。
func (s *AuthService) Register(ctx context.Context, username, password, confirmPassword string) (*domain.User, error) {
	logCtx := logrus.WithField("username", username)

	// 1. 基本验证
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	if password != confirmPassword {
		return nil, ErrPasswordMismatch
	}

	// 2. 检查用户名是否已存在
	existing, err := s.userRepo.FindByUsername(ctx, username)
	switch {
	case err == nil && existing != nil:
		logCtx.Warn("Registration failed: Username already exists")
		return nil, ErrUsernameTaken
	case err != nil && !errors.Is(err, repository.ErrUserNotFound):
		logCtx.WithError(err).Error("Database error checking username")
		return nil, ErrInternalServer
	}

	// 3. 哈希密码
	hashedPassword, err := s.hashPassword(password)
	if err != nil {
		logCtx.WithError(err).Error("Failed to hash password during registration")
		return nil, ErrInternalServer
	}

	// 4. 保存用户 (唯一索引兜底并发注册)
	user := &domain.User{
		Username: username,
		Password: hashedPassword,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.WithError(err).Warn("Registration failed: Username already exists (repo error)")
			return nil, ErrUsernameTaken
		}
		logCtx.WithError(err).Error("Database error during user creation")
		return nil, ErrInternalServer
	}

	logCtx.WithField("user_id", user.ID).Info("User registered successfully")
	user.Password = "" // 清除密码哈希再返回
	return user, nil
}

// Login 校验用户名和密码，成功时返回用户。
// 用户不存在和密码错误对调用方不可区分。
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	logCtx := logrus.WithField("username", username)

	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			logCtx.Warn("Login attempt failed: User not found")
			return nil, ErrAuthenticationFailed
		}
		logCtx.WithError(err).Error("Login attempt failed: Error finding user")
		return nil, ErrInternalServer
	}
	if user == nil {
		logCtx.Warn("Login attempt failed: User not found (repo returned nil user without error)")
		return nil, ErrAuthenticationFailed
	}

	if !checkPassword(password, user.Password) {
		logCtx.Warn("Login attempt failed: Invalid password")
		return nil, ErrAuthenticationFailed
	}

	logCtx.WithField("user_id", user.ID).Info("User logged in successfully")
	user.Password = ""
	return user, nil
}

// ChangePassword 校验当前密码后覆盖为新密码。
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword, confirmNewPassword string) error {
	logCtx := logrus.WithField("user_id", userID)

	if newPassword != confirmNewPassword {
		return ErrPasswordMismatch
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			logCtx.Warn("Change password failed: User not found")
			return ErrUserNotFound
		}
		logCtx.WithError(err).Error("Change password failed: Error finding user")
		return ErrInternalServer
	}

	if !checkPassword(currentPassword, user.Password) {
		logCtx.Warn("Change password failed: Incorrect current password")
		return ErrIncorrectPassword
	}

	hashedPassword, err := s.hashPassword(newPassword)
	if err != nil {
		logCtx.WithError(err).Error("Failed to hash new password")
		return ErrInternalServer
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		logCtx.WithError(err).Error("Database error updating password")
		return ErrInternalServer
	}

	logCtx.Info("Password changed successfully")
	return nil
}

// --- 私有辅助函数 ---

// hashPassword 使用 bcrypt 对密码进行哈希处理
func (s *AuthService) hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to generate hash from password: %w", err)
	}
	return string(bytes), nil
}

// checkPassword 验证提供的密码是否与存储的哈希匹配
func checkPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
