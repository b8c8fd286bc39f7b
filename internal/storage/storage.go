// Package storage reads project videos from and writes screenshots to the
// Supabase storage bucket.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/sirupsen/logrus"
	storage_go "github.com/supabase-community/storage-go"
)

// SignedURLExpiry is the lifetime of a signed video URL in seconds.
const SignedURLExpiry = 3600

// ErrVideoNotFound is returned when a project has no uploaded video.
var ErrVideoNotFound = errors.New("storage: project video not found")

// videoNames are tried in order when locating a project's upload.
var videoNames = []string{"original.mp4", "original.webm"}

// ObjectClient is the subset of the storage API used here.
// *storage_go.Client satisfies it.
type ObjectClient interface {
	CreateSignedUrl(bucketID, filePath string, expiresIn int) (storage_go.SignedUrlResponse, error)
	UploadFile(bucketID, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
	DownloadFile(bucketID, filePath string, urlOptions ...storage_go.UrlOptions) ([]byte, error)
}

// Bucket wraps one storage bucket.
type Bucket struct {
	client ObjectClient
	name   string
	logger logrus.FieldLogger
}

// NewBucket returns a Bucket for the named bucket.
func NewBucket(client ObjectClient, name string, logger logrus.FieldLogger) *Bucket {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Bucket{client: client, name: name, logger: logger}
}

// SignedURL returns a time-limited URL for an object.
func (b *Bucket) SignedURL(ctx context.Context, objectPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	resp, err := b.client.CreateSignedUrl(b.name, objectPath, SignedURLExpiry)
	if err != nil {
		return "", fmt.Errorf("sign %s/%s: %w", b.name, objectPath, err)
	}
	if resp.SignedURL == "" {
		return "", fmt.Errorf("sign %s/%s: empty url", b.name, objectPath)
	}
	return resp.SignedURL, nil
}

// VideoURL locates a project's uploaded video and signs it.
func (b *Bucket) VideoURL(ctx context.Context, projectID string) (string, error) {
	var lastErr error
	for _, name := range videoNames {
		u, err := b.SignedURL(ctx, path.Join(projectID, name))
		if err == nil {
			return u, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
	}
	b.logger.WithError(lastErr).WithField("project_id", projectID).Debug("no uploaded video")
	return "", fmt.Errorf("project %s: %w", projectID, ErrVideoNotFound)
}

// DownloadVideo fetches a project's uploaded video.
func (b *Bucket) DownloadVideo(ctx context.Context, projectID string) ([]byte, string, error) {
	for _, name := range videoNames {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		p := path.Join(projectID, name)
		data, err := b.client.DownloadFile(b.name, p)
		if err == nil && len(data) > 0 {
			return data, name, nil
		}
	}
	return nil, "", fmt.Errorf("project %s: %w", projectID, ErrVideoNotFound)
}

// ScreenshotPath is where the screenshot of a step is stored.
func ScreenshotPath(projectID, stepID string) string {
	return path.Join(projectID, "screenshots", stepID+".jpg")
}

// UploadScreenshot stores a JPEG screenshot, replacing any previous one.
func (b *Bucket) UploadScreenshot(ctx context.Context, projectID, stepID string, img []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p := ScreenshotPath(projectID, stepID)
	contentType := "image/jpeg"
	upsert := true
	_, err := b.client.UploadFile(b.name, p, bytes.NewReader(img), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s/%s: %w", b.name, p, err)
	}
	b.logger.WithFields(logrus.Fields{"path": p, "bytes": len(img)}).Info("screenshot uploaded")
	return p, nil
}
