package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"jobfill/autofill"
	"jobfill/dom"
	"jobfill/models"
)

// FillPage is a live page the fill service can drive and photograph.
type FillPage interface {
	dom.Page
	Screenshotter
	Close() error
}

// PageOpener opens url in a fresh page.
type PageOpener interface {
	OpenPage(ctx context.Context, url string) (FillPage, error)
}

// OpenPage adapts Open to PageOpener.
func (s *BrowserService) OpenPage(ctx context.Context, url string) (FillPage, error) {
	p, err := s.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ScreenshotRecorder attaches a stored screenshot to a logged application.
type ScreenshotRecorder interface {
	SetScreenshot(ctx context.Context, id int, key string) error
}

type FillRequest struct {
	URL        string `json:"url" binding:"required"`
	Screenshot bool   `json:"screenshot"`
}

type FillResponse struct {
	autofill.FillResult
	Platform      string `json:"platform"`
	ScreenshotKey string `json:"screenshot_key,omitempty"`
}

var ErrInvalidURL = errors.New("url must be an absolute http(s) URL")

// FillService runs one server-side fill pass per request: open the page,
// fill it from the stored profile, optionally photograph the result.
type FillService struct {
	opener      PageOpener
	profiles    autofill.ProfileSource
	settings    autofill.SettingsSource
	sink        autofill.ApplicationLogger
	screenshots *ScreenshotService
	logger      *zap.Logger
	engineOpts  []autofill.Option
}

type FillServiceOption func(*FillService)

func WithScreenshots(s *ScreenshotService) FillServiceOption {
	return func(f *FillService) { f.screenshots = s }
}

func WithApplicationLogger(sink autofill.ApplicationLogger) FillServiceOption {
	return func(f *FillService) { f.sink = sink }
}

func WithFillLogger(l *zap.Logger) FillServiceOption {
	return func(f *FillService) { f.logger = l }
}

// WithEngineOptions passes options through to every orchestrator.
func WithEngineOptions(opts ...autofill.Option) FillServiceOption {
	return func(f *FillService) { f.engineOpts = append(f.engineOpts, opts...) }
}

func NewFillService(opener PageOpener, profiles autofill.ProfileSource, settings autofill.SettingsSource, opts ...FillServiceOption) *FillService {
	f := &FillService{opener: opener, profiles: profiles, settings: settings, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FillService) Fill(ctx context.Context, req FillRequest) (*FillResponse, error) {
	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidURL
	}

	page, err := f.opener.OpenPage(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := page.Close(); err != nil {
			f.logger.Debug("failed to close page", zap.Error(err))
		}
	}()

	sink := &recordingSink{next: f.sink}
	opts := append([]autofill.Option{autofill.WithLogger(f.logger)}, f.engineOpts...)
	if f.sink != nil {
		opts = append(opts, autofill.WithSink(sink))
	}
	engine := autofill.NewOrchestrator(opts...)
	if err := engine.Init(ctx, f.profiles, f.settings); err != nil {
		// the engine still runs with whatever loaded
		f.logger.Warn("fill starting with partial configuration", zap.Error(err))
	}

	result := engine.Fill(ctx, page)
	resp := &FillResponse{FillResult: result, Platform: autofill.DetectPlatform(page.URL())}

	if req.Screenshot && f.screenshots.Enabled() {
		key, err := f.screenshots.CaptureAndUpload(ctx, page, result.RunID)
		if err != nil {
			f.logger.Warn("screenshot failed", zap.String("run_id", result.RunID), zap.Error(err))
		} else {
			resp.ScreenshotKey = key
		}
	}

	engine.Wait()
	if resp.ScreenshotKey != "" {
		f.attachScreenshot(ctx, sink, resp)
	}
	return resp, nil
}

func (f *FillService) attachScreenshot(ctx context.Context, sink *recordingSink, resp *FillResponse) {
	recorder, ok := f.sink.(ScreenshotRecorder)
	app := sink.logged()
	if !ok || app == nil || app.ID == 0 {
		return
	}
	if err := recorder.SetScreenshot(ctx, app.ID, resp.ScreenshotKey); err != nil {
		f.logger.Warn("failed to attach screenshot", zap.Int("application_id", app.ID), zap.Error(err))
	}
}

// recordingSink forwards to next and remembers what it logged.
type recordingSink struct {
	next autofill.ApplicationLogger
	mu   sync.Mutex
	app  *models.Application
}

func (s *recordingSink) LogApplication(ctx context.Context, app *models.Application) error {
	if err := s.next.LogApplication(ctx, app); err != nil {
		return fmt.Errorf("forward application log: %w", err)
	}
	s.mu.Lock()
	s.app = app
	s.mu.Unlock()
	return nil
}

func (s *recordingSink) logged() *models.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.app
}
