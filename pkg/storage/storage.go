package storage

import (
	"context"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"fleetdesk/pkg/logger"
)

// Uploader stores profile media and returns a public URL for it.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, publicID, folder string) (string, error)
	Delete(ctx context.Context, publicID string) error
}

type Config struct {
	CloudName string
	APIKey    string
	APISecret string
}

func (c Config) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// New returns a Cloudinary-backed Uploader, or a no-op one when the
// credentials are absent so image uploads degrade instead of failing.
func New(cfg Config, log *logger.Logger) (Uploader, error) {
	if !cfg.Enabled() {
		log.Warn("cloudinary not configured, profile media uploads disabled")
		return &noopUploader{log: log}, nil
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, err
	}

	return &cloudinaryUploader{cld: cld, log: log}, nil
}

type cloudinaryUploader struct {
	cld *cloudinary.Cloudinary
	log *logger.Logger
}

func (u *cloudinaryUploader) Upload(ctx context.Context, file io.Reader, publicID, folder string) (string, error) {
	resp, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         folder,
		Transformation: "c_thumb,w_200,h_200",
	})
	if err != nil {
		return "", err
	}

	u.log.Debug("media uploaded", "public_id", publicID, "folder", folder)
	return resp.SecureURL, nil
}

func (u *cloudinaryUploader) Delete(ctx context.Context, publicID string) error {
	_, err := u.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return err
}

type noopUploader struct {
	log *logger.Logger
}

func (u *noopUploader) Upload(ctx context.Context, file io.Reader, publicID, folder string) (string, error) {
	u.log.Debug("media upload skipped, storage disabled", "public_id", publicID)
	return "", nil
}

func (u *noopUploader) Delete(ctx context.Context, publicID string) error {
	return nil
}
