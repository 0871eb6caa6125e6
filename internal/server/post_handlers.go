package server

import (
	"io"

	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePostRequest is accepted as JSON or as multipart form fields.
type CreatePostRequest struct {
	Title    string `json:"title" form:"title"`
	Content  string `json:"content" form:"content"`
	Category string `json:"category" form:"category"`
	Hashtags string `json:"hashtags" form:"hashtags"`
}

// GetPosts handles GET /api/posts
// @Summary List posts
// @Description Newest-first page of active posts with comment counts and the caller's like state.
// @Tags posts
// @Produce json
// @Param category query string false "Category name or 'all'"
// @Param limit query int false "Page size (default 5, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePagination(c, service.DefaultPostPageSize)

	posts, err := s.postService.ListPosts(c.UserContext(), service.ListPostsInput{
		Category: c.Query("category"),
		Limit:    page.Limit,
		Offset:   page.Offset,
		Visitor:  middleware.VisitorFrom(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
// @Summary Get post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.GetPost(c.UserContext(), id, middleware.VisitorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
// @Summary Create post
// @Description Accepts JSON or multipart/form-data with an optional "image" file.
// @Tags posts
// @Accept json
// @Accept mpfd
// @Produce json
// @Param request body CreatePostRequest true "Post"
// @Success 201 {object} object{message=string,id=int}
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req CreatePostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	image, err := readImageUpload(c)
	if err != nil {
		return nil
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Hashtags: req.Hashtags,
		AuthorIP: middleware.VisitorFrom(c),
		Image:    image,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Saved successfully",
		"id":      post.ID,
	})
}

// readImageUpload returns the optional "image" form file. Requests without
// a multipart body or without the field yield nil.
func readImageUpload(c *fiber.Ctx) (*service.UploadImageInput, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}
	files := form.File["image"]
	if len(files) == 0 || files[0].Size == 0 {
		return nil, nil
	}
	file := files[0]

	src, err := file.Open()
	if err != nil {
		_ = respondError(c, models.NewValidationError("Unable to read uploaded file"))
		return nil, errResponseWritten
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		_ = respondError(c, models.NewValidationError("Unable to read uploaded file"))
		return nil, errResponseWritten
	}

	return &service.UploadImageInput{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

// GetTrending handles GET /api/posts/trending
// @Summary Trending posts
// @Description Top active posts by views and likes.
// @Tags posts
// @Produce json
// @Success 200 {array} models.Post
// @Router /posts/trending [get]
func (s *Server) GetTrending(c *fiber.Ctx) error {
	posts, err := s.postService.Trending(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// LikePost handles POST /api/posts/like
// @Summary Like or unlike a post
// @Tags engagement
// @Accept json
// @Produce json
// @Param request body object{post_id=int,action=string} true "action is required: add or remove"
// @Success 200 {object} object{status=string,liked=bool,likes=int}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /posts/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	var req struct {
		PostID uint   `json:"post_id"`
		Action string `json:"action"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	res, err := s.engagementService.ToggleLike(c.UserContext(), req.PostID,
		middleware.VisitorFrom(c), models.LikeAction(req.Action))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"changed": res.Changed,
		"liked":   res.Liked,
		"likes":   res.Likes,
	})
}

// ViewPost handles POST /api/posts/view
// @Summary Record a post view
// @Description Counts the first view per visitor; repeats answer already_viewed.
// @Tags engagement
// @Accept json
// @Produce json
// @Param request body object{post_id=int} true "View"
// @Success 200 {object} object{status=string}
// @Failure 404 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /posts/view [post]
func (s *Server) ViewPost(c *fiber.Ctx) error {
	var req struct {
		PostID uint `json:"post_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	outcome, err := s.engagementService.RecordView(c.UserContext(), req.PostID, middleware.VisitorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": string(outcome)})
}
