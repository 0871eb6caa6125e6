package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"postboard/internal/config"
	"postboard/internal/models"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

const (
	DefaultImageUploadDir       = "static/uploads"
	DefaultImageMaxUploadSizeMB = 5
	// ImageURLPrefix is where stored uploads are served from.
	ImageURLPrefix = "/uploads"
	// MaxImageDimension rejects decompression bombs before they are stored.
	MaxImageDimension = 8192
)

// imageFormat is one accepted encoding, keyed by the name image.DecodeConfig
// reports for it.
type imageFormat struct {
	mime       string
	extensions []string
}

var imageFormats = map[string]imageFormat{
	"png":  {mime: "image/png", extensions: []string{".png"}},
	"jpeg": {mime: "image/jpeg", extensions: []string{".jpg", ".jpeg"}},
	"gif":  {mime: "image/gif", extensions: []string{".gif"}},
	"webp": {mime: "image/webp", extensions: []string{".webp"}},
}

type UploadImageInput struct {
	Filename    string
	ContentType string
	Content     []byte
}

// StoredImage describes an accepted upload.
type StoredImage struct {
	URL      string
	Path     string
	MimeType string
	Width    int
	Height   int
}

// ImageService validates post images and writes them to the upload directory.
// Files are stored as received; nothing is re-encoded.
type ImageService struct {
	uploadDir string
	maxBytes  int64
}

func NewImageService(cfg *config.Config) *ImageService {
	s := &ImageService{
		uploadDir: DefaultImageUploadDir,
		maxBytes:  DefaultImageMaxUploadSizeMB << 20,
	}
	if cfg == nil {
		return s
	}
	if cfg.UploadDir != "" {
		s.uploadDir = cfg.UploadDir
	}
	if cfg.ImageMaxUploadSizeMB > 0 {
		s.maxBytes = int64(cfg.ImageMaxUploadSizeMB) << 20
	}
	return s
}

// UploadDir returns the directory uploads are written to.
func (s *ImageService) UploadDir() string {
	return s.uploadDir
}

// Store validates the upload and writes it under a random file name.
func (s *ImageService) Store(in UploadImageInput) (*StoredImage, error) {
	ext := strings.ToLower(filepath.Ext(in.Filename))
	format, dims, err := s.inspect(in, ext)
	if err != nil {
		return nil, err
	}

	name := uuid.NewString() + ext
	dst := filepath.Join(s.uploadDir, name)
	if err := os.MkdirAll(s.uploadDir, 0o750); err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := os.WriteFile(dst, in.Content, 0o600); err != nil {
		return nil, models.NewInternalError(err)
	}

	return &StoredImage{
		URL:      path.Join(ImageURLPrefix, name),
		Path:     dst,
		MimeType: format.mime,
		Width:    dims.Width,
		Height:   dims.Height,
	}, nil
}

// inspect checks size, extension, sniffed type, decoded header and declared
// content type, in that order, before anything touches the disk.
func (s *ImageService) inspect(in UploadImageInput, ext string) (imageFormat, image.Config, error) {
	invalid := func(reason string) (imageFormat, image.Config, error) {
		return imageFormat{}, image.Config{}, models.NewValidationError(reason)
	}

	switch {
	case len(in.Content) == 0:
		return invalid("No file uploaded")
	case int64(len(in.Content)) > s.maxBytes:
		return invalid(fmt.Sprintf("File too large (max %dMB)", s.maxBytes>>20))
	case !knownExtension(ext):
		return invalid("Invalid image type")
	case !knownMIME(http.DetectContentType(in.Content)):
		return invalid("Invalid image type")
	}

	dims, name, err := image.DecodeConfig(bytes.NewReader(in.Content))
	if err != nil {
		return invalid("Invalid image file")
	}
	format, ok := imageFormats[name]
	if !ok {
		return invalid("Unsupported image format")
	}
	if dims.Width <= 0 || dims.Height <= 0 || dims.Width > MaxImageDimension || dims.Height > MaxImageDimension {
		return invalid("Image dimensions out of range")
	}

	declared := mediaType(in.ContentType)
	if declared == "image/jpg" {
		declared = "image/jpeg"
	}
	if strings.HasPrefix(declared, "image/") && declared != format.mime {
		return invalid("Image content type mismatch")
	}
	return format, dims, nil
}

// Remove deletes a stored upload; used when the owning post was not saved.
func (s *ImageService) Remove(img *StoredImage) {
	if img != nil {
		_ = os.Remove(img.Path)
	}
}

func knownExtension(ext string) bool {
	for _, f := range imageFormats {
		for _, e := range f.extensions {
			if e == ext {
				return true
			}
		}
	}
	return false
}

func knownMIME(contentType string) bool {
	mt := mediaType(contentType)
	for _, f := range imageFormats {
		if f.mime == mt {
			return true
		}
	}
	return false
}

// mediaType strips parameters and case from a Content-Type value.
func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = contentType
	}
	return strings.ToLower(strings.TrimSpace(mt))
}
