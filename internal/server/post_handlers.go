package server

import (
	"navega/internal/repository"
	"navega/internal/service"

	"github.com/gofiber/fiber/v2"
)

type contentRequest struct {
	Message  string `json:"message"`
	DeviceID string `json:"deviceId"`
	Nickname string `json:"nickname"`
}

// GetPosts handles GET /api/posts
// @Summary List posts
// @Description Live posts newest first, each with its live comments oldest first. Without limit every post is returned.
// @Tags forum
// @Produce json
// @Param limit query int false "Max posts (capped at 100)"
// @Param offset query int false "Posts to skip"
// @Success 200 {array} models.Post
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePagination(c)
	posts, err := s.contentService.ListPosts(c.UserContext(), repository.Page{
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(posts)
}

// CreatePost handles POST /api/posts
// @Summary Create post
// @Description Registered callers are identified by their token, anonymous callers by deviceId.
// @Tags forum
// @Accept json
// @Produce json
// @Param request body contentRequest true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req contentRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	who, err := identityOf(c, req.DeviceID)
	if err != nil {
		return respondAppError(c, err)
	}

	post, err := s.contentService.CreatePost(c.UserContext(), service.CreatePostInput{
		Who:      who,
		Message:  req.Message,
		Nickname: req.Nickname,
	})
	if err != nil {
		return respondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// TogglePostIdentify handles POST /api/posts/:postId/identify
// @Summary Toggle "identify" on a post
// @Tags forum
// @Produce json
// @Param postId path int true "Post ID"
// @Param deviceId query string false "Anonymous device id"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId}/identify [post]
func (s *Server) TogglePostIdentify(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
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

	post, err := s.contentService.TogglePostIdentify(c.UserContext(), postID, who)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:postId
// @Summary Delete post
// @Description Allowed for the author and for administrators. The post is soft deleted.
// @Tags forum
// @Produce json
// @Param postId path int true "Post ID"
// @Param deviceId query string false "Anonymous device id"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	// Without any identity the caller can only be refused.
	who, _ := identityOf(c, "")
	if err := s.contentService.DeletePost(c.UserContext(), postID, who); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Publicación eliminada correctamente."})
}
