package server

import (
	"postboard/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// GeneratePost handles POST /api/generate
// @Summary Draft a post
// @Description Asks the text generator for a post about the topic.
// @Tags ai
// @Accept json
// @Produce json
// @Param request body object{topic=string} true "Topic"
// @Success 200 {object} service.GeneratedPost
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /generate [post]
func (s *Server) GeneratePost(c *fiber.Ctx) error {
	var req struct {
		Topic string `json:"topic"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.generationService.Generate(c.UserContext(), req.Topic, middleware.VisitorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// CheckContent handles POST /api/check
// @Summary Pre-screen content
// @Tags ai
// @Accept json
// @Produce json
// @Param request body object{content=string,hashtags=string} true "Draft"
// @Success 200 {object} object{status=string}
// @Router /check [post]
func (s *Server) CheckContent(c *fiber.Ctx) error {
	var req struct {
		Content  string `json:"content"`
		Hashtags string `json:"hashtags"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	verdict := s.generationService.Check(c.UserContext(), req.Content, req.Hashtags, middleware.VisitorFrom(c))
	return c.JSON(fiber.Map{"status": verdict})
}
