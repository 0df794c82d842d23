package controllers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nfnt/resize"

	"storefront/integrations"
)

const (
	maxImageSize   = 10 << 20
	maxImageWidth  = 1600
	jpegQuality    = 80
	uploadDeadline = 2 * time.Minute
)

type ImageUploader interface {
	Upload(ctx context.Context, filename string, content io.Reader) (string, error)
}

type MailSender interface {
	Send(ctx context.Context, e integrations.Email) error
}

type uploadFailure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

type MediaController struct {
	images  ImageUploader
	mail    MailSender
	inbox   string
	timeout time.Duration
}

func NewMediaController(images ImageUploader, mail MailSender, inbox string) *MediaController {
	return &MediaController{images: images, mail: mail, inbox: inbox, timeout: uploadDeadline}
}

// Upload forwards every file in the "images" (or "image") field to the image
// host, scaled down to maxImageWidth. Files are uploaded one by one; those
// that succeed are kept even when a later one fails.
func (mc *MediaController) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		fail(c, http.StatusBadRequest, "Multipart form with images is required")
		return
	}
	files := append(form.File["images"], form.File["image"]...)
	if len(files) == 0 {
		fail(c, http.StatusBadRequest, "No images provided")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), mc.timeout)
	defer cancel()

	urls := []string{}
	failures := []uploadFailure{}
	for _, fh := range files {
		url, err := mc.uploadOne(ctx, fh)
		if errors.Is(err, integrations.ErrNotConfigured) {
			respondError(c, err, "")
			return
		}
		if err != nil {
			slog.Warn("image upload failed", "file", fh.Filename, "error", err)
			failures = append(failures, uploadFailure{File: fh.Filename, Error: err.Error()})
			continue
		}
		urls = append(urls, url)
	}

	if len(urls) == 0 {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Image upload failed", "failed": failures})
		return
	}
	ok(c, http.StatusOK, gin.H{"urls": urls, "failed": failures})
}

func (mc *MediaController) uploadOne(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh.Size > maxImageSize {
		return "", fmt.Errorf("file exceeds %d MB", maxImageSize>>20)
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("unsupported content type %s", ct)
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	optimised, err := shrink(f)
	if err != nil {
		return "", err
	}
	return mc.images.Upload(ctx, fh.Filename, optimised)
}

// shrink decodes a PNG or JPEG, resizes it to maxImageWidth when wider,
// keeping the aspect ratio, and re-encodes it in the same format.
func shrink(r io.Reader) (*bytes.Buffer, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Dx() > maxImageWidth {
		img = resize.Resize(maxImageWidth, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if format == "png" {
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return &buf, nil
}

func (mc *MediaController) Contact(c *gin.Context) {
	var in struct {
		Name    string `json:"name" binding:"required"`
		Email   string `json:"email" binding:"required,email"`
		Subject string `json:"subject"`
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Name, a valid email and a message are required")
		return
	}
	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		subject = "New contact message"
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	err := mc.mail.Send(ctx, integrations.Email{
		To:      mc.inbox,
		Subject: fmt.Sprintf("[Contact] %s", subject),
		Text:    fmt.Sprintf("From: %s <%s>\n\n%s", in.Name, in.Email, in.Message),
		ReplyTo: in.Email,
	})
	if errors.Is(err, integrations.ErrNotConfigured) {
		respondError(c, err, "")
		return
	}
	if err != nil {
		slog.Error("send contact mail", "error", err)
		fail(c, http.StatusBadGateway, "Failed to send message")
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Message sent"})
}
