package server

import (
	"postboard/internal/middleware"
	"postboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment adds a comment to a post. Profane comments are answered
// with status UNSAFE.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		PostID  uint   `json:"post_id"`
		Content string `json:"content"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if _, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		PostID:   req.PostID,
		Content:  req.Content,
		AuthorIP: middleware.VisitorFrom(c),
	}); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  "SAFE",
		"message": "Comment added",
	})
}

// GetComments returns all comments for a post in insertion order.
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := positiveQueryID(c, "post_id")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListComments(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}
