package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yassir1410/ModernToDoList/config"
	"github.com/yassir1410/ModernToDoList/models"
	"github.com/yassir1410/ModernToDoList/repository"
	"github.com/yassir1410/ModernToDoList/utils"
)

// UserService 注册、认证与资料维护
type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// Register 注册新用户，用户名和邮箱必须唯一，密码以 bcrypt 哈希保存
func (s *UserService) Register(ctx context.Context, username, email, password, fullName string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, validationError("Username, email and password are required")
	}

	config.Logger.Infow("注册新用户", "username", username)

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, validationError("Username is already taken")
	}
	exists, err = s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, validationError("Email is already registered")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: username,
		Email:    email,
		Password: hash,
		FullName: strings.TrimSpace(fullName),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validationError("Username or email is already registered")
		}
		return nil, err
	}
	return user, nil
}

// Authenticate 校验用户名与密码
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, unauthorizedError("Invalid username or password")
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(password, user.Password) {
		return nil, unauthorizedError("Invalid username or password")
	}
	return user, nil
}

// FindByUsername 按用户名查找
func (s *UserService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundError("User not found")
	}
	return user, err
}

func (s *UserService) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.users.ExistsByUsername(ctx, username)
}

func (s *UserService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.users.ExistsByEmail(ctx, email)
}

// UpdateProfile 更新姓名、邮箱与密码；修改密码必须提供正确的当前密码
func (s *UserService) UpdateProfile(ctx context.Context, username string, req models.UpdateProfileRequest) (*models.User, error) {
	config.Logger.Infow("更新用户资料", "username", username)

	user, err := s.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		if fullName := strings.TrimSpace(*req.FullName); fullName != user.FullName {
			user.FullName = fullName
		}
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email != "" && email != user.Email {
			taken, err := s.users.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, validationError("Email is already taken")
			}
			user.Email = email
		}
	}

	if req.NewPassword != nil && *req.NewPassword != "" {
		if req.CurrentPassword == nil || *req.CurrentPassword == "" {
			return nil, unauthorizedError("Current password is required to set a new password")
		}
		if !utils.CheckPassword(*req.CurrentPassword, user.Password) {
			return nil, unauthorizedError("Current password is incorrect")
		}
		hash, err := utils.HashPassword(*req.NewPassword)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}

	if err := s.users.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validationError("Email is already taken")
		}
		return nil, err
	}
	return user, nil
}

// DeleteAllUsers 批量重置，同时删除所有待办
func (s *UserService) DeleteAllUsers(ctx context.Context) error {
	config.Logger.Infow("删除所有用户")
	if err := s.users.DeleteAll(ctx); err != nil {
		config.Logger.Errorw("删除所有用户失败", "error", err)
		return err
	}
	return nil
}
