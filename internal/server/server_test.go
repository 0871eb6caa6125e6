package server

import (
	"os"
	"path/filepath"
	"testing"

	"postboard/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthChecks(t *testing.T) {
	ts := newTestServer(t)

	live := ts.do(t, "GET", "/health/live", nil, nil)
	assert.Equal(t, fiber.StatusOK, live.status)
	assert.Equal(t, "up", live.object(t)["status"])

	ready := ts.do(t, "GET", "/health/ready", nil, nil)
	require.Equal(t, fiber.StatusOK, ready.status)
	body := ready.object(t)
	assert.Equal(t, "healthy", body["status"])
	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "healthy", checks["database"])
	assert.Equal(t, "unavailable", checks["redis"])
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, "GET", "/api/nope", nil, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.status)
	assert.Equal(t, "NOT_FOUND", resp.object(t)["code"])
}

func TestVisitorFromTrustedProxyHeader(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, "POST", "/api/posts", fiber.Map{"title": "t", "content": "c"},
		from("::ffff:198.51.100.7, 10.0.0.1"))
	require.Equal(t, fiber.StatusCreated, resp.status, string(resp.body))

	var author string
	require.NoError(t, ts.db.Raw("SELECT author_ip FROM posts LIMIT 1").Scan(&author).Error)
	assert.Equal(t, "198.51.100.7", author)
}

func TestNewServerWithDeps_ProfanityRulesFile(t *testing.T) {
	rules := filepath.Join(t.TempDir(), "rules.yml")
	require.NoError(t, os.WriteFile(rules, []byte("house:\n  - pineapple\n"), 0o600))

	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.ProfanityRulesFile = rules
		cfg.ProfanityRuleSets = "default,house"
	})

	resp := ts.do(t, "POST", "/api/comments", fiber.Map{"post_id": 1, "content": "Pineapple pizza"}, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.status)
	assert.Equal(t, "UNSAFE", resp.object(t)["status"])
}

func TestNewServerWithDeps_UnknownRuleSet(t *testing.T) {
	cfg := testConfig(t)
	cfg.ProfanityRuleSets = "missing"
	_, err := NewServerWithDeps(cfg, nil, nil)
	assert.Error(t, err)
}
