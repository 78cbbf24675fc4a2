package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Screenshotter captures the current page as a PNG.
type Screenshotter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

// ObjectStore is the part of S3Service screenshots need.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// ScreenshotService captures post-fill evidence and stores it.
type ScreenshotService struct {
	store  ObjectStore
	logger *zap.Logger
	now    func() time.Time
}

// NewScreenshotService returns a service that uploads to store. A nil store
// disables uploads: CaptureAndUpload then returns an empty key.
func NewScreenshotService(store ObjectStore, logger *zap.Logger) *ScreenshotService {
	return &ScreenshotService{store: store, logger: logger, now: time.Now}
}

func (s *ScreenshotService) Enabled() bool {
	return s != nil && s.store != nil
}

// CaptureAndUpload screenshots page and returns the storage key.
func (s *ScreenshotService) CaptureAndUpload(ctx context.Context, page Screenshotter, runID string) (string, error) {
	if !s.Enabled() {
		s.logger.Debug("screenshot store not configured, skipping capture", zap.String("run_id", runID))
		return "", nil
	}

	png, err := page.Screenshot(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to take screenshot: %w", err)
	}

	key := fmt.Sprintf("screenshots/%s_%d.png", runID, s.now().Unix())
	if _, err := s.store.Upload(ctx, key, png, "image/png"); err != nil {
		return "", fmt.Errorf("failed to upload screenshot: %w", err)
	}
	s.logger.Info("screenshot stored", zap.String("run_id", runID), zap.String("key", key))
	return key, nil
}
