package service

import (
	"context"
	"strings"

	"navega/internal/models"
	"navega/internal/repository"
	"navega/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService is the administrator's account management.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

type UsersPage struct {
	TotalItems  int64         `json:"totalItems"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
	Users       []models.User `json:"users"`
}

type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UpdateUserInput carries a partial update; empty fields are left unchanged.
type UpdateUserInput struct {
	ID       uint
	Name     string
	Email    string
	Role     string
	Password string
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users, bcryptCost: bcrypt.DefaultCost}
}

// WithBcryptCost overrides the hashing cost.
func (s *UserService) WithBcryptCost(cost int) *UserService {
	s.bcryptCost = cost
	return s
}

func (s *UserService) ListUsers(ctx context.Context, req PageRequest) (*UsersPage, error) {
	req = req.Normalize()
	users, total, err := s.users.List(ctx, req.window())
	if err != nil {
		return nil, err
	}
	return &UsersPage{
		TotalItems:  total,
		TotalPages:  totalPages(total, req.Limit),
		CurrentPage: req.Page,
		Users:       users,
	}, nil
}

func parseRole(raw string, fallback models.Role) (models.Role, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	role := models.Role(strings.ToLower(raw))
	if !role.Valid() {
		return "", models.NewValidationError("El rol debe ser user o administrator.")
	}
	return role, nil
}

func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
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
	role, err := parseRole(in.Role, models.RoleUser)
	if err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{Name: name, Email: email, Password: hash, Role: role}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, in UpdateUserInput) (*models.User, error) {
	// Update saves every column, so the row must come from the primary.
	user, err := s.users.GetByID(repository.ReadPrimary(ctx), in.ID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		if err := validation.ValidateName(name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Name = name
	}
	if email := validation.NormalizeEmail(in.Email); email != "" {
		if err := validation.ValidateEmail(email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Email = email
	}
	if user.Role, err = parseRole(in.Role, user.Role); err != nil {
		return nil, err
	}
	if in.Password != "" {
		if err := validation.ValidatePassword(in.Password); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if user.Password, err = hashPassword(in.Password, s.bcryptCost); err != nil {
			return nil, err
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	return s.users.Delete(ctx, id)
}
