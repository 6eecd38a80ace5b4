package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"itnfit/pkg/jwt"
	"itnfit/pkg/logger"
	"itnfit/services/auth/internal/entity"
	"itnfit/services/auth/internal/repo/persistent"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is deactivated")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthUseCase interface {
	Register(ctx context.Context, email, name, phone, password string) (*entity.User, string, error)
	Login(ctx context.Context, email, password string) (*entity.User, string, error)
	GetUser(ctx context.Context, userID string) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID, name, phone string) (*entity.User, error)
}

type authUseCase struct {
	userRepo   persistent.UserRepository
	jwtService *jwt.Service
	logger     *logger.Logger
	hashCost   int
}

func NewAuthUseCase(
	userRepo persistent.UserRepository,
	jwtService *jwt.Service,
	logger *logger.Logger,
) AuthUseCase {
	return &authUseCase{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
		hashCost:   bcrypt.DefaultCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a member account. Staff accounts are only created by the
// seed command.
func (uc *authUseCase) Register(ctx context.Context, email, name, phone, password string) (*entity.User, string, error) {
	email = normalizeEmail(email)

	_, err := uc.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, "", ErrEmailTaken
	}
	if !errors.Is(err, persistent.ErrNotFound) {
		uc.logger.Error("Failed to look up email %s: %v", email, err)
		return nil, "", fmt.Errorf("failed to process registration: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), uc.hashCost)
	if err != nil {
		uc.logger.Error("Failed to hash password: %v", err)
		return nil, "", fmt.Errorf("failed to process registration: %w", err)
	}

	user := &entity.User{
		Email:    email,
		Name:     strings.TrimSpace(name),
		Phone:    strings.TrimSpace(phone),
		Password: string(hashedPassword),
		Role:     entity.RoleMember,
		IsActive: true,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, persistent.ErrDuplicateEmail) {
			return nil, "", ErrEmailTaken
		}
		uc.logger.Error("Failed to create user: %v", err)
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := uc.jwtService.GenerateToken(user.ID, string(user.Role), user.Name)
	if err != nil {
		uc.logger.Error("Failed to generate token: %v", err)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	user.Password = ""
	return user, token, nil
}

func (uc *authUseCase) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, persistent.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		uc.logger.Error("Failed to look up user for login: %v", err)
		return nil, "", fmt.Errorf("failed to log in: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, "", ErrAccountDisabled
	}

	token, err := uc.jwtService.GenerateToken(user.ID, string(user.Role), user.Name)
	if err != nil {
		uc.logger.Error("Failed to generate token: %v", err)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	user.Password = ""
	return user, token, nil
}

func (uc *authUseCase) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if errors.Is(err, persistent.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.Password = ""
	return user, nil
}

// UpdateProfile changes the display name shown to staff on usage requests.
// Tokens issued earlier keep the old name until the next login.
func (uc *authUseCase) UpdateProfile(ctx context.Context, userID, name, phone string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if errors.Is(err, persistent.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if name = strings.TrimSpace(name); name != "" {
		user.Name = name
	}
	user.Phone = strings.TrimSpace(phone)

	if err := uc.userRepo.Update(ctx, user); err != nil {
		uc.logger.Error("Failed to update user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	user.Password = ""
	return user, nil
}
