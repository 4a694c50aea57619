package server

import (
	"strings"

	"navega/internal/models"
	"navega/internal/service"

	"github.com/gofiber/fiber/v2"
)

type authResponse struct {
	Message      string             `json:"message"`
	User         models.UserSummary `json:"user"`
	AccessToken  string             `json:"accessToken"`
	RefreshToken string             `json:"refreshToken"`
}

func newAuthResponse(message string, res *service.AuthResult) authResponse {
	return authResponse{
		Message:      message,
		User:         res.User.Summary(),
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}
}

// Register handles POST /api/auth/register
// @Summary Register
// @Description Create a user account and sign it in. The role is always user.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{name=string,email=string,password=string} true "Registration"
// @Success 201 {object} authResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	res, err := s.authService.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(
		newAuthResponse("Tripulante registrado y autenticado satisfactoriamente", res))
}

// Login handles POST /api/auth/login
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Credentials"
// @Success 200 {object} authResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	res, err := s.authService.Login(c.UserContext(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(newAuthResponse("Inicio de sesión exitoso", res))
}

// Refresh handles POST /api/auth/refresh
// @Summary Refresh access token
// @Description Exchange a refresh token for a new access token. The refresh token is not rotated.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{token=string} true "Refresh token"
// @Success 200 {object} object{accessToken=string}
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /auth/refresh [post]
func (s *Server) Refresh(c *fiber.Ctx) error {
	var req struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refreshToken"`
	}
	// An empty or malformed body is reported as a missing token below.
	_ = c.BodyParser(&req)

	token := strings.TrimSpace(req.Token)
	if token == "" {
		token = strings.TrimSpace(req.RefreshToken)
	}

	access, err := s.authService.Refresh(c.UserContext(), token)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"accessToken": access})
}
