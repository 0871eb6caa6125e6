package server

import (
	"fmt"
	"testing"

	"postboard/internal/models"
	"postboard/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment(t *testing.T) {
	ts := newTestServer(t)
	post := testutil.CreatePost(t, ts.db, "discussed", 0, 0)

	resp := ts.do(t, "POST", "/api/comments", fiber.Map{"post_id": post.ID, "content": "first!"}, nil)
	require.Equal(t, fiber.StatusCreated, resp.status, string(resp.body))
	body := resp.object(t)
	assert.Equal(t, "SAFE", body["status"])
	assert.Equal(t, "Comment added", body["message"])

	resp = ts.do(t, "POST", "/api/comments", fiber.Map{"post_id": post.ID, "content": "well damn"}, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.status)
	body = resp.object(t)
	assert.Equal(t, "UNSAFE", body["status"])
	assert.Equal(t, "Profanity detected.", body["reason"])

	resp = ts.do(t, "POST", "/api/comments", fiber.Map{"post_id": post.ID, "content": "   "}, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.status)

	resp = ts.do(t, "POST", "/api/comments", fiber.Map{"post_id": 999, "content": "orphan"}, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.status)
}

func TestGetComments_Ordered(t *testing.T) {
	ts := newTestServer(t)
	post := testutil.CreatePost(t, ts.db, "thread", 0, 0)
	other := testutil.CreatePost(t, ts.db, "elsewhere", 0, 0)
	for _, content := range []string{"one", "two", "three"} {
		ts.do(t, "POST", "/api/comments", fiber.Map{"post_id": post.ID, "content": content}, nil)
	}
	testutil.CreateComment(t, ts.db, other.ID, "unrelated")

	var comments []models.Comment
	resp := ts.do(t, "GET", fmt.Sprintf("/api/comments?post_id=%d", post.ID), nil, nil)
	require.Equal(t, fiber.StatusOK, resp.status)
	resp.decode(t, &comments)

	require.Len(t, comments, 3)
	assert.Equal(t, "one", comments[0].Content)
	assert.Equal(t, "three", comments[2].Content)

	assert.Equal(t, fiber.StatusBadRequest, ts.do(t, "GET", "/api/comments", nil, nil).status)
}
