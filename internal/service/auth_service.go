package service

import (
	"context"
	"strings"
	"time"

	"sheet_lms_backend/internal/config"
	"sheet_lms_backend/internal/model"
	"sheet_lms_backend/internal/repository"
	"sheet_lms_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     model.UserRole
}

type AuthResult struct {
	User  model.Profile `json:"user"`
	Token string        `json:"token"`
}

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
	now      func() time.Time
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
		now:      time.Now,
	}
}

// Register 注册后直接签发 token。自助注册不能选择 admin。
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	role := in.Role
	if role == "" {
		role = model.Student
	}
	if !role.Valid() || role == model.Admin {
		return nil, util.FieldError("role", "role must be one of: student, instructor")
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, exists, err := s.UserRepo.FindByEmail(ctx, email); err != nil {
		return nil, err
	} else if exists {
		return nil, util.ErrEmailRegistered
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := model.User{
		ID:           model.GenerateUUID(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
		CreatedAt:    s.now().UTC().Format(model.TimeLayout),
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, exists, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthService) issue(user model.User) (*AuthResult, error) {
	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user.Profile(), Token: token}, nil
}

func (s *AuthService) GetCurrentUser(ctx context.Context, userID string) (model.Profile, error) {
	user, exists, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return model.Profile{}, err
	}
	if !exists {
		return model.Profile{}, util.NewNotFound("User not found")
	}
	return user.Profile(), nil
}
