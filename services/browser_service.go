package services

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"jobfill/config"
)

const desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// BrowserService owns one Chromium process. Each Open gets its own
// browser context so cookies never leak between fills.
type BrowserService struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	cfg     config.BrowserConfig
	logger  *zap.Logger
}

func NewBrowserService(cfg config.BrowserConfig, logger *zap.Logger) (*BrowserService, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Args: []string{
			"--no-sandbox",
			"--disable-blink-features=AutomationControlled",
			"--disable-extensions",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	logger.Info("browser launched", zap.Bool("headless", cfg.Headless))
	return &BrowserService{pw: pw, browser: browser, cfg: cfg, logger: logger}, nil
}

// Open navigates a fresh page to url and waits for it to load.
func (s *BrowserService) Open(ctx context.Context, url string) (*PlaywrightPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bctx, err := s.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(desktopUserAgent),
		Viewport:  &playwright.Size{Width: 1366, Height: 900},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		return nil, fmt.Errorf("failed to create browser page: %w", err)
	}

	timeout := float64(s.cfg.Timeout.Milliseconds())
	page.SetDefaultTimeout(timeout)
	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(timeout),
	}); err != nil {
		bctx.Close()
		return nil, fmt.Errorf("failed to load %s: %w", url, err)
	}

	s.logger.Debug("page opened", zap.String("url", page.URL()))
	return &PlaywrightPage{page: page, bctx: bctx}, nil
}

func (s *BrowserService) Close() error {
	var firstErr error
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			firstErr = err
		}
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
