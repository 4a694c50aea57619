// Package service holds the business rules that sit between the HTTP
// handlers and the repositories.
package service

import (
	"strings"

	"navega/internal/models"
)

// ResolveIdentity decides who is acting. An authenticated principal always
// wins; otherwise a non-blank device id makes the caller anonymous.
func ResolveIdentity(principal *models.Principal, deviceHint string) (models.Identity, error) {
	if principal != nil && principal.UserID != 0 {
		return models.Registered{UserID: principal.UserID}, nil
	}
	if device := strings.TrimSpace(deviceHint); device != "" {
		return models.Anonymous{DeviceID: device}, nil
	}
	return nil, models.NewValidationError("Se requiere un identificador de usuario o dispositivo.")
}
