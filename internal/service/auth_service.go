package service

import (
	"context"
	"errors"
	"strings"

	"navega/internal/models"
	"navega/internal/repository"
	"navega/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and access-token refresh.
type AuthService struct {
	users      repository.UserRepository
	tokens     *TokenService
	bcryptCost int
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User   *models.User
	Tokens TokenPair
}

func NewAuthService(users repository.UserRepository, tokens *TokenService) *AuthService {
	return &AuthService{users: users, tokens: tokens, bcryptCost: bcrypt.DefaultCost}
}

// WithBcryptCost overrides the hashing cost, mostly so tests stay fast.
func (s *AuthService) WithBcryptCost(cost int) *AuthService {
	s.bcryptCost = cost
	return s
}

// Register creates a user account. The role is always RoleUser regardless of
// what the client asked for.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := validation.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, models.NewValidationError("Nombre, correo electrónico y contraseña son obligatorios.")
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError(repository.DuplicateEmailMessage)
	}

	hash, err := hashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{Name: name, Email: email, Password: hash, Role: models.RoleUser}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Login checks the credentials. An unknown email is a not-found error and a
// wrong password a validation error, matching what the web client expects.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := validation.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, models.NewValidationError("Correo electrónico y contraseña son obligatorios.")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &models.AppError{Code: models.CodeNotFound, Message: "Tripulante no encontrado, ¡regístrate ahora!"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.NewValidationError("Credenciales inválidas, ¡inténtalo de nuevo!")
	}

	tokens, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Refresh exchanges a refresh credential for a new access credential. The
// refresh credential itself is not rotated. The user is reloaded so the new
// access credential carries the current role.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return "", models.NewUnauthorizedError("Se requiere el token de actualización.")
	}

	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", models.NewForbiddenError("El token de actualización no es válido.")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return "", models.NewForbiddenError("El token de actualización no es válido.")
		}
		return "", err
	}

	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return access, nil
}

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", models.NewValidationError("La contraseña no puede superar los 72 bytes.")
		}
		return "", models.NewInternalError(err)
	}
	return string(hash), nil
}
