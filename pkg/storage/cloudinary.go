package storage

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Upload folders used across the API.
const (
	FolderAvatars     = "avatars"
	FolderBackgrounds = "backgrounds"
	FolderCourses     = "courses"
	FolderLayout      = "layout"
	FolderLogo        = "logo"
)

// UploadedImage is what the image store hands back after an upload.
type UploadedImage struct {
	PublicID string
	URL      string
}

// ImageStorage defines the contract for the hosted image CDN
// (Cloudinary implementation). file accepts anything the SDK accepts:
// an io.Reader, a local path, a data URI or a remote URL.
type ImageStorage interface {
	// Upload stores the image under folder, optionally scaled to width,
	// and returns its public id and delivery URL.
	Upload(ctx context.Context, file interface{}, folder string, width int) (*UploadedImage, error)
	// Destroy removes the asset by public id. Destroying an id that is
	// already gone is not an error.
	Destroy(ctx context.Context, publicID string) error
}

type cloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStorage expects CLOUDINARY_URL or the individual
// CLOUDINARY_* variables to be configured (see Cloudinary Go SDK docs).
func NewCloudinaryStorage() (ImageStorage, error) {
	cld, err := cloudinary.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	cld.Config.URL.Secure = true

	return &cloudinaryStorage{cld: cld}, nil
}

func (s *cloudinaryStorage) Upload(ctx context.Context, file interface{}, folder string, width int) (*UploadedImage, error) {
	if s == nil || s.cld == nil {
		return nil, fmt.Errorf("cloudinary storage is not initialized")
	}

	params := uploader.UploadParams{
		Folder:         folder,
		UniqueFilename: api.Bool(true),
		Overwrite:      api.Bool(false),
	}
	if width > 0 {
		params.Transformation = fmt.Sprintf("w_%d,c_scale", width)
	}

	resp, err := s.cld.Upload.Upload(ctx, file, params)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image to cloudinary: %w", err)
	}
	if resp.SecureURL == "" {
		return nil, fmt.Errorf("cloudinary upload succeeded but secure URL is empty")
	}

	return &UploadedImage{
		PublicID: resp.PublicID,
		URL:      resp.SecureURL,
	}, nil
}

func (s *cloudinaryStorage) Destroy(ctx context.Context, publicID string) error {
	if s == nil || s.cld == nil {
		return fmt.Errorf("cloudinary storage is not initialized")
	}
	if publicID == "" {
		return nil
	}

	// Invalidate: true helps to clear CDN cache
	params := uploader.DestroyParams{
		PublicID:   publicID,
		Invalidate: api.Bool(true),
	}

	resp, err := s.cld.Upload.Destroy(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to delete image from cloudinary: %w", err)
	}
	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy api returned result: %s", resp.Result)
	}

	return nil
}
