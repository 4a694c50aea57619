package server

import (
	"navega/internal/middleware"
	"navega/internal/service"

	"github.com/gofiber/fiber/v2"
)

type userRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// ListUsers handles GET /api/users
// @Summary List users, newest first
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} service.UsersPage
// @Router /users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	page, err := s.userService.ListUsers(c.UserContext(), parsePageRequest(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(page)
}

// CreateUser handles POST /api/users
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body userRequest true "User"
// @Success 201 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users [post]
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req userRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	user, err := s.userService.CreateUser(c.UserContext(), service.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return respondAppError(c, err)
	}
	middleware.Logger.InfoContext(c.UserContext(), "user created by administrator",
		"created_user_id", user.ID, "role", string(user.Role))
	return c.Status(fiber.StatusCreated).JSON(user)
}

// UpdateUser handles PUT /api/users/:id
// @Summary Update user
// @Description Partial update; empty fields are left unchanged and a new password is rehashed.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body userRequest true "Fields to change"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/{id} [put]
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req userRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	user, err := s.userService.UpdateUser(c.UserContext(), service.UpdateUserInput{
		ID:       id,
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /api/users/:id
// @Summary Delete user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [delete]
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.DeleteUser(c.UserContext(), id); err != nil {
		return respondAppError(c, err)
	}
	middleware.Logger.InfoContext(c.UserContext(), "user deleted by administrator", "deleted_user_id", id)
	return c.JSON(fiber.Map{"message": "Usuario eliminado exitosamente."})
}
