package server

import (
	"github.com/gofiber/fiber/v2"
)

// AdminLogin handles POST /api/admin/login
// @Summary Admin login
// @Description Exchange the admin password for a bearer token.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body object{password=string} true "Credentials"
// @Success 200 {object} object{token=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /admin/login [post]
func (s *Server) AdminLogin(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	token, err := s.adminAuthService.Login(c.UserContext(), req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"token": token})
}

// AdminStats handles GET /api/admin/stats
// @Summary Moderation statistics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} repository.Stats
// @Failure 401 {object} models.ErrorResponse
// @Router /admin/stats [get]
func (s *Server) AdminStats(c *fiber.Ctx) error {
	stats, err := s.moderationService.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// AdminReports handles GET /api/admin/reports
// @Summary Recent reports
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.AdminReportRow
// @Router /admin/reports [get]
func (s *Server) AdminReports(c *fiber.Ctx) error {
	rows, err := s.moderationService.ListReports(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rows)
}

// AdminPosts handles GET /api/admin/posts
func (s *Server) AdminPosts(c *fiber.Ctx) error {
	rows, err := s.moderationService.ListRecentPosts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rows)
}

// AdminBanned handles GET /api/admin/banned
func (s *Server) AdminBanned(c *fiber.Ctx) error {
	rows, err := s.moderationService.ListBanned(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rows)
}

// AdminFlagged handles GET /api/admin/flagged
func (s *Server) AdminFlagged(c *fiber.Ctx) error {
	posts, err := s.moderationService.ListFlagged(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}
