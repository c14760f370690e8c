// Package capture fetches live page markup through a real browser so
// elements can be inspected exactly as they render, JavaScript included.
package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/locateflow/locateflow/internal/config"
	"github.com/locateflow/locateflow/internal/domain"
)

// PageCapture is the rendered page as the browser saw it.
type PageCapture struct {
	URL      string
	Title    string
	HTML     []byte
	Duration time.Duration
}

// Service drives a headless browser to capture page markup.
type Service struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	cfg     config.CaptureConfig
	logger  *zap.Logger
}

// NewService starts the browser configured by cfg.
func NewService(cfg config.CaptureConfig, logger *zap.Logger) (*Service, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	}

	var browser playwright.Browser
	switch cfg.Browser {
	case "firefox":
		browser, err = pw.Firefox.Launch(launchOpts)
	case "webkit":
		browser, err = pw.WebKit.Launch(launchOpts)
	default:
		browser, err = pw.Chromium.Launch(launchOpts)
	}
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launching %s: %w", cfg.Browser, err)
	}

	return &Service{
		pw:      pw,
		browser: browser,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// Browser returns the configured browser name.
func (s *Service) Browser() string {
	return s.cfg.Browser
}

// Close shuts down the browser and the playwright driver.
func (s *Service) Close() error {
	if s.browser != nil {
		s.browser.Close()
	}
	if s.pw != nil {
		return s.pw.Stop()
	}
	return nil
}

// Capture navigates to pageURL and returns the rendered markup.
func (s *Service) Capture(ctx context.Context, pageURL string) (*PageCapture, error) {
	start := time.Now()

	browserCtx, err := s.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  1920,
			Height: 1080,
		},
	})
	if err != nil {
		return nil, domain.NewCapture("creating browser context", err)
	}
	defer browserCtx.Close()

	page, err := browserCtx.NewPage()
	if err != nil {
		return nil, domain.NewCapture("creating page", err)
	}
	defer page.Close()

	if _, err := page.Goto(pageURL, playwright.PageGotoOptions{
		WaitUntil: waitUntilState(s.cfg.WaitState),
		Timeout:   playwright.Float(float64(s.cfg.NavTimeout.Milliseconds())),
	}); err != nil {
		return nil, domain.NewCapture(fmt.Sprintf("navigating to %s", pageURL), err)
	}

	html, err := page.Content()
	if err != nil {
		return nil, domain.NewCapture("reading page content", err)
	}

	if s.cfg.MaxPageSize > 0 && int64(len(html)) > s.cfg.MaxPageSize {
		return nil, domain.NewCapture(
			fmt.Sprintf("page exceeds maximum size of %d bytes", s.cfg.MaxPageSize), nil)
	}

	title, err := page.Title()
	if err != nil {
		title = ""
	}

	capture := &PageCapture{
		URL:      pageURL,
		Title:    title,
		HTML:     []byte(html),
		Duration: time.Since(start),
	}

	s.logger.Debug("captured page",
		zap.String("url", pageURL),
		zap.Int("bytes", len(capture.HTML)),
		zap.Duration("duration", capture.Duration),
	)

	return capture, nil
}

// ElementBox returns the viewport rectangle of the first element matching
// selector on pageURL, or nil when the element is not rendered.
func (s *Service) ElementBox(ctx context.Context, pageURL, selector string) (*domain.BoundingBox, error) {
	browserCtx, err := s.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  1920,
			Height: 1080,
		},
	})
	if err != nil {
		return nil, domain.NewCapture("creating browser context", err)
	}
	defer browserCtx.Close()

	page, err := browserCtx.NewPage()
	if err != nil {
		return nil, domain.NewCapture("creating page", err)
	}
	defer page.Close()

	if _, err := page.Goto(pageURL, playwright.PageGotoOptions{
		WaitUntil: waitUntilState(s.cfg.WaitState),
		Timeout:   playwright.Float(float64(s.cfg.NavTimeout.Milliseconds())),
	}); err != nil {
		return nil, domain.NewCapture(fmt.Sprintf("navigating to %s", pageURL), err)
	}

	el, err := page.QuerySelector(selector)
	if err != nil || el == nil {
		return nil, nil
	}

	box, err := el.BoundingBox()
	if err != nil || box == nil {
		return nil, nil
	}

	return &domain.BoundingBox{
		X:      box.X,
		Y:      box.Y,
		Width:  box.Width,
		Height: box.Height,
	}, nil
}

func waitUntilState(state string) *playwright.WaitUntilState {
	switch state {
	case "load":
		return playwright.WaitUntilStateLoad
	case "domcontentloaded":
		return playwright.WaitUntilStateDomcontentloaded
	default:
		return playwright.WaitUntilStateNetworkidle
	}
}
