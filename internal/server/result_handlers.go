package server

import (
	"navega/internal/middleware"
	"navega/internal/service"

	"github.com/gofiber/fiber/v2"
)

type submitResultRequest struct {
	DeviceID       string `json:"device_id"`
	UserID         *uint  `json:"user_id"`
	AgeRange       string `json:"age_range"`
	Gender         string `json:"gender"`
	UserRole       string `json:"user_role"`
	ScreenTime     string `json:"screen_time"`
	FinalScore     int    `json:"final_score"`
	ResultCategory string `json:"result_category"`
}

// SubmitResult handles POST /api/results
// @Summary Submit a quiz result
// @Description Anonymous devices send device_id; authenticated callers fill user_id from their token.
// @Tags results
// @Accept json
// @Produce json
// @Param request body submitResultRequest true "Result"
// @Success 201 {object} object{message=string,data=models.Result}
// @Failure 400 {object} models.ErrorResponse
// @Router /results [post]
func (s *Server) SubmitResult(c *fiber.Ctx) error {
	var req submitResultRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	result, err := s.resultService.Submit(c.UserContext(), service.SubmitResultInput{
		Principal:      middleware.PrincipalFrom(c),
		DeviceID:       req.DeviceID,
		UserID:         req.UserID,
		AgeRange:       req.AgeRange,
		Gender:         req.Gender,
		UserRole:       req.UserRole,
		ScreenTime:     req.ScreenTime,
		FinalScore:     req.FinalScore,
		ResultCategory: req.ResultCategory,
	})
	if err != nil {
		return respondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Resultado guardado con éxito.",
		"data":    result,
	})
}

// GetLatestResult handles GET /api/results/user/:userId/latest
// @Summary Latest result of a user
// @Description Readable by the user themself and by administrators.
// @Tags results
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} models.Result
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /results/user/{userId}/latest [get]
func (s *Server) GetLatestResult(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	result, err := s.resultService.LatestForUser(c.UserContext(), middleware.PrincipalFrom(c), userID)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(result)
}
