package server

import (
	"navega/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/posts/:postId/comments
// @Summary Comment on a post
// @Tags forum
// @Accept json
// @Produce json
// @Param postId path int true "Post ID"
// @Param request body contentRequest true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	var req contentRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	who, err := identityOf(c, req.DeviceID)
	if err != nil {
		return respondAppError(c, err)
	}

	comment, err := s.contentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		Who:      who,
		PostID:   postID,
		Message:  req.Message,
		Nickname: req.Nickname,
	})
	if err != nil {
		return respondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// ToggleCommentIdentify handles POST /api/posts/:postId/comments/:commentId/identify
// @Summary Toggle "identify" on a comment
// @Tags forum
// @Produce json
// @Param postId path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Param deviceId query string false "Anonymous device id"
// @Success 200 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId}/comments/{commentId}/identify [post]
func (s *Server) ToggleCommentIdentify(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	var req contentRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return nil
	}

	who, err := identityOf(c, req.DeviceID)
	if err != nil {
		return respondAppError(c, err)
	}

	comment, err := s.contentService.ToggleCommentIdentify(c.UserContext(), postID, commentID, who)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/posts/:postId/comments/:commentId
// @Summary Delete comment
// @Tags forum
// @Produce json
// @Param postId path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Param deviceId query string false "Anonymous device id"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId}/comments/{commentId} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	who, _ := identityOf(c, "")
	if err := s.contentService.DeleteComment(c.UserContext(), postID, commentID, who); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comentario eliminado correctamente."})
}
