package server

import (
	"postboard/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// FeatureFlagsResponse lists configured flag values next to their outcome for
// the calling visitor.
type FeatureFlagsResponse struct {
	Raw       map[string]string `json:"raw"`
	Evaluated map[string]bool   `json:"evaluated"`
}

// GetFeatureFlags godoc
// @Summary Inspect feature flags
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} FeatureFlagsResponse
// @Router /admin/feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	resp := FeatureFlagsResponse{Raw: map[string]string{}, Evaluated: map[string]bool{}}
	if s.featureFlags != nil {
		resp.Raw = s.featureFlags.Raw()
		resp.Evaluated = s.featureFlags.Snapshot(middleware.VisitorFrom(c))
	}
	return c.JSON(resp)
}
