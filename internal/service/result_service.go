package service

import (
	"context"
	"strings"

	"navega/internal/models"
	"navega/internal/repository"
)

// ResultService records quiz outcomes.
type ResultService struct {
	results repository.ResultRepository
	isAdmin AdminCheck
}

// SubmitResultInput is a quiz submission. Principal, when set, fills UserID
// if the body did not carry one.
type SubmitResultInput struct {
	Principal      *models.Principal
	DeviceID       string
	UserID         *uint
	AgeRange       string
	Gender         string
	UserRole       string
	ScreenTime     string
	FinalScore     int
	ResultCategory string
}

func NewResultService(results repository.ResultRepository, isAdmin AdminCheck) *ResultService {
	return &ResultService{results: results, isAdmin: isAdmin}
}

func optionalString(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

func (s *ResultService) Submit(ctx context.Context, in SubmitResultInput) (*models.Result, error) {
	userID := in.UserID
	if userID != nil && *userID == 0 {
		userID = nil
	}
	if userID == nil && in.Principal != nil {
		uid := in.Principal.UserID
		userID = &uid
	}
	deviceID := optionalString(in.DeviceID)

	category := models.ResultCategory(strings.ToLower(strings.TrimSpace(in.ResultCategory)))
	if (deviceID == nil && userID == nil) ||
		strings.TrimSpace(in.AgeRange) == "" ||
		strings.TrimSpace(in.UserRole) == "" ||
		category == "" {
		return nil, models.NewValidationError("Faltan datos requeridos.")
	}
	if !category.Valid() {
		return nil, models.NewValidationError("La categoría del resultado debe ser verde, amarillo o rojo.")
	}

	result := &models.Result{
		DeviceID:       deviceID,
		UserID:         userID,
		AgeRange:       strings.TrimSpace(in.AgeRange),
		Gender:         strings.TrimSpace(in.Gender),
		UserRole:       strings.TrimSpace(in.UserRole),
		ScreenTime:     strings.TrimSpace(in.ScreenTime),
		FinalScore:     in.FinalScore,
		ResultCategory: category,
	}
	if err := s.results.Create(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// LatestForUser returns the newest result of userID. Only the user themself
// or an administrator may read it.
func (s *ResultService) LatestForUser(ctx context.Context, caller *models.Principal, userID uint) (*models.Result, error) {
	if caller == nil {
		return nil, models.NewForbiddenError("Acceso denegado.")
	}
	if caller.UserID != userID {
		admin := false
		if s.isAdmin != nil {
			var err error
			if admin, err = s.isAdmin(ctx, caller.UserID); err != nil {
				return nil, err
			}
		}
		if !admin {
			return nil, models.NewForbiddenError("Acceso denegado.")
		}
	}
	return s.results.LatestForUser(ctx, userID)
}
