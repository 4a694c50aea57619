package server

import (
	"navega/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /api/data/profile
// @Summary Echo the authenticated principal
// @Tags data
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string,user=models.Principal}
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /data/profile [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Bienvenido a tu perfil",
		"user":    middleware.PrincipalFrom(c),
	})
}

// GetAdminDashboard handles GET /api/data/admin-dashboard
// @Summary Administrator probe
// @Tags data
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Router /data/admin-dashboard [get]
func (s *Server) GetAdminDashboard(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Bienvenido al panel de administrador"})
}
