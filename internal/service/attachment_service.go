package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"adminhub/internal/config"
	"adminhub/internal/models"

	"github.com/chai2010/webp"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	DefaultUploadDir       = "/tmp/adminhub/uploads"
	DefaultPublicUploadURL = "/uploads"
	DefaultMaxUploadSizeMB = 25
	AttachmentMaxEdge      = 1600
	IconMaxEdge            = 256
	WebPQuality            = 75
)

// AttachmentKind selects how an upload is normalized.
type AttachmentKind int

const (
	// KindPostMedia accepts images and videos for event posts.
	KindPostMedia AttachmentKind = iota
	// KindIcon accepts images only and shrinks them to icon size.
	KindIcon
)

// Upload is a file received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// StoredAttachment is where a normalized upload ended up.
type StoredAttachment struct {
	URL       string `json:"url"`
	MediaType string `json:"media_type"`
	MimeType  string `json:"mime_type"`
	Size      int64  `json:"size"`
}

type AttachmentService struct {
	uploadDir          string
	publicURL          string
	maxUploadSizeBytes int64
}

func NewAttachmentService(cfg *config.Config) *AttachmentService {
	uploadDir := DefaultUploadDir
	publicURL := DefaultPublicUploadURL
	maxUploadSizeMB := DefaultMaxUploadSizeMB

	if cfg != nil {
		if cfg.UploadDir != "" {
			uploadDir = cfg.UploadDir
		}
		if cfg.PublicUploadURL != "" {
			publicURL = cfg.PublicUploadURL
		}
		if cfg.MaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.MaxUploadSizeMB
		}
	}

	return &AttachmentService{
		uploadDir:          uploadDir,
		publicURL:          strings.TrimRight(publicURL, "/"),
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// UploadDir is the directory served under the public upload URL.
func (s *AttachmentService) UploadDir() string {
	return s.uploadDir
}

// ServePath is the local route prefix for stored files. An absolute public
// URL such as a CDN origin contributes only its path.
func (s *AttachmentService) ServePath() string {
	p := s.publicURL
	if u, err := url.Parse(p); err == nil && u.Host != "" {
		p = u.Path
	}
	if p == "" {
		return DefaultPublicUploadURL
	}
	return p
}

// Save validates an upload, normalizes it for kind and writes it to disk.
// Images are bounded and re-encoded to WebP; videos are stored unchanged.
func (s *AttachmentService) Save(in Upload, kind AttachmentKind) (*StoredAttachment, error) {
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detected := mimetype.Detect(in.Content)
	switch {
	case isAllowedImageMIME(detected.String()):
		maxEdge := AttachmentMaxEdge
		if kind == KindIcon {
			maxEdge = IconMaxEdge
		}
		return s.saveImage(in, maxEdge)
	case kind == KindPostMedia && isAllowedVideoMIME(detected.String()):
		return s.store(in.Content, detected.Extension(), models.MediaTypeVideo, normalizeContentType(detected.String()))
	default:
		return nil, models.NewValidationError("Unsupported file type")
	}
}

func (s *AttachmentService) saveImage(in Upload, maxEdge int) (*StoredAttachment, error) {
	decoded, _, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	encoded, err := encodeWebP(resizeToFit(decoded, maxEdge, maxEdge), WebPQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.store(encoded, ".webp", models.MediaTypeImage, "image/webp")
}

func (s *AttachmentService) store(content []byte, ext, mediaType, mimeType string) (*StoredAttachment, error) {
	name := uuid.NewString() + ext
	if err := writeBytesToFile(filepath.Join(s.uploadDir, name), content); err != nil {
		return nil, models.NewInternalError(err)
	}
	return &StoredAttachment{
		URL:       s.publicURL + "/" + path.Clean(name),
		MediaType: mediaType,
		MimeType:  mimeType,
		Size:      int64(len(content)),
	}, nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func isAllowedVideoMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "video/mp4", "video/webm", "video/quicktime":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func writeBytesToFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
