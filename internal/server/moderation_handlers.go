package server

import (
	"fmt"
	"strings"

	"postboard/internal/middleware"
	"postboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ReportRequest targets exactly one of a post or a comment.
type ReportRequest struct {
	PostID    *uint  `json:"post_id"`
	CommentID *uint  `json:"comment_id"`
	Reason    string `json:"reason"`
}

// FileReport handles POST /api/report
// @Summary Report a post or comment
// @Description Posts reaching the report threshold are flagged and hidden from listings.
// @Tags moderation
// @Accept json
// @Produce json
// @Param request body ReportRequest true "Report"
// @Success 200 {object} object{message=string,count=int,flagged=bool}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /report [post]
func (s *Server) FileReport(c *fiber.Ctx) error {
	var req ReportRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	res, err := s.reportService.FileReport(c.UserContext(), service.FileReportInput{
		PostID:    req.PostID,
		CommentID: req.CommentID,
		Reason:    req.Reason,
		Reporter:  middleware.VisitorFrom(c),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Report submitted successfully.",
		"count":   res.Count,
		"flagged": res.Flagged,
	})
}

// AdminModerate handles POST /api/admin/moderate
// @Summary Moderate a post
// @Description status is one of active, flagged, deleted or hard_delete.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{post_id=int,status=string} true "Decision"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/moderate [post]
func (s *Server) AdminModerate(c *fiber.Ctx) error {
	var req struct {
		PostID uint   `json:"post_id"`
		Status string `json:"status"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	action := service.ModerationAction(strings.ToLower(strings.TrimSpace(req.Status)))
	if err := s.moderationService.SetStatus(c.UserContext(), req.PostID, action); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Content updated"})
}

// AdminBan handles POST /api/admin/ban
// @Summary Ban an address
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{ip=string,reason=string} true "Ban"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/ban [post]
func (s *Server) AdminBan(c *fiber.Ctx) error {
	var req struct {
		IP     string `json:"ip"`
		Reason string `json:"reason"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := s.moderationService.BanIdentity(c.UserContext(), req.IP, req.Reason); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("IP %s has been banned.", strings.TrimSpace(req.IP))})
}

// AdminUnblock handles POST /api/admin/unblock
func (s *Server) AdminUnblock(c *fiber.Ctx) error {
	var req struct {
		IP string `json:"ip"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := s.moderationService.UnbanIdentity(c.UserContext(), req.IP); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("IP %s unblocked", strings.TrimSpace(req.IP))})
}
