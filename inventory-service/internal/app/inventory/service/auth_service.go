package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"vidasmart/inventory-service/internal/app/inventory/entity"
	"vidasmart/inventory-service/internal/app/inventory/repository"
	"vidasmart/inventory-service/internal/app/inventory/util"
	"vidasmart/pkg/logger"

	"github.com/google/uuid"
)

// AuthService - вход по email и паролю, выдача JWT, управление пользователями
type AuthService struct {
	users  repository.UserRepository
	jwt    *util.JWTManager
	hasher *util.PasswordHasher
}

func NewAuthService(users repository.UserRepository, jwt *util.JWTManager, hasher *util.PasswordHasher) *AuthService {
	return &AuthService{users: users, jwt: jwt, hasher: hasher}
}

// Login не различает "нет пользователя" и "неверный пароль"
func (s *AuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidLogin
		}
		return nil, translate("get user", err)
	}

	if !s.hasher.Matches(user.PasswordHash, req.Password) {
		return nil, ErrInvalidLogin
	}

	token, err := s.jwt.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, translate("generate access token", err)
	}

	return &entity.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwt.AccessTokenDuration().Seconds()),
		User:        user,
	}, nil
}

func (s *AuthService) ValidateToken(token string) (*util.JWTClaims, error) {
	return s.jwt.ValidateToken(token)
}

func (s *AuthService) CreateUser(ctx context.Context, req *entity.CreateUserRequest) (*entity.User, error) {
	errs := fieldErrors{}
	if !strings.Contains(req.Email, "@") {
		errs.add("email", "must be a valid email")
	}
	if len(req.Password) < 8 {
		errs.add("password", "must be at least 8 characters")
	}
	if req.Role != entity.RoleAdmin && req.Role != entity.RoleSeller {
		errs.add("role", "must be one of: admin seller")
	}
	if strings.TrimSpace(req.Name) == "" {
		errs.add("name", "required")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email)); err == nil {
		return nil, ErrDuplicate
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, translate("get user", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, translate("hash password", err)
	}

	user := &entity.User{
		ID:           uuid.New(),
		Email:        normalizeEmail(req.Email),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		Role:         req.Role,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, translate("create user", err)
	}
	return user, nil
}

func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, translate("get user", err)
	}
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]entity.User, error) {
	users, err := s.users.GetAll(ctx)
	if err != nil {
		return nil, translate("list users", err)
	}
	return users, nil
}

// EnsureAdmin создает первого администратора при старте, если его ещё нет
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	_, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return translate("get user", err)
	}

	if _, err := s.CreateUser(ctx, &entity.CreateUserRequest{
		Email:    email,
		Name:     "Administrator",
		Password: password,
		Role:     entity.RoleAdmin,
	}); err != nil {
		return err
	}

	logger.Info().Str("email", normalizeEmail(email)).Msg("bootstrap admin created")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
