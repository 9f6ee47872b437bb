package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"postboard/internal/apperr"
	"postboard/internal/auth"
	"postboard/internal/domain"
	"postboard/internal/repo"
)

// Deliberately identical for unknown email and wrong password so login
// errors never reveal whether an account exists.
const invalidCredentialsMsg = "invalid email or password"

// RegisterInput is the payload for UserService.Register.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginInput is the payload for UserService.Login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserService handles registration, login, and user lookups.
type UserService struct {
	repo     repo.UserRepo
	tokens   *auth.TokenIssuer
	validate *validator.Validate
	log      *zap.Logger
}

// NewUserService returns a new UserService.
func NewUserService(r repo.UserRepo, tokens *auth.TokenIssuer, log *zap.Logger) *UserService {
	return &UserService{repo: r, tokens: tokens, validate: NewValidator(), log: log}
}

// Register creates a new account with role "User". Every validation
// violation is reported together; the password hash is never echoed back.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := checkInput(s.validate, in); err != nil {
		return domain.User{}, err
	}

	exists, err := s.repo.EmailExists(ctx, in.Email)
	if err != nil {
		return domain.User{}, err
	}
	if exists {
		return domain.User{}, apperr.New(apperr.KindDuplicateEmail, "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	u, err := s.repo.Create(ctx, domain.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	})
	if err != nil {
		// Unique-constraint backstop for the pre-check race. The users
		// table carries two unique constraints; report the one that fired.
		if repo.IsUniqueViolation(err) {
			if strings.Contains(repo.UniqueViolationConstraint(err), "username") {
				return domain.User{}, apperr.Validation(map[string][]string{
					"username": {"username is already taken"},
				})
			}
			return domain.User{}, apperr.New(apperr.KindDuplicateEmail, "email already registered")
		}
		return domain.User{}, err
	}
	s.log.Info("user registered", zap.String("user_id", u.ID))
	u.PasswordHash = ""
	return u, nil
}

// Login verifies credentials and returns a signed session token.
func (s *UserService) Login(ctx context.Context, in LoginInput) (string, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || in.Password == "" {
		return "", apperr.New(apperr.KindInvalidCredentials, invalidCredentialsMsg)
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.New(apperr.KindInvalidCredentials, invalidCredentialsMsg)
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return "", apperr.New(apperr.KindInvalidCredentials, invalidCredentialsMsg)
	}
	token, err := s.tokens.Issue(u)
	if err != nil {
		return "", err
	}
	s.log.Info("user logged in", zap.String("user_id", u.ID))
	return token, nil
}

// GetByID returns the user by id.
func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, apperr.New(apperr.KindNotFound, "user not found")
		}
		return domain.User{}, err
	}
	return u, nil
}
