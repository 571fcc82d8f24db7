package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"resurate/internal/shared/telemetry"
)

const (
	defaultWidth  = 1240
	defaultHeight = 1754
)

// Chrome renders PDFs with a headless Chrome instance.
type Chrome struct {
	// ExecPath overrides the Chrome binary lookup.
	ExecPath string
	Timeout  time.Duration
	// Width and Height size the viewport the first page is captured in.
	Width  int64
	Height int64
}

// NewChrome returns a converter using the given binary (empty for lookup).
func NewChrome(execPath string, timeout time.Duration) *Chrome {
	return &Chrome{ExecPath: execPath, Timeout: timeout, Width: defaultWidth, Height: defaultHeight}
}

func (c *Chrome) Convert(ctx context.Context, pdf []byte) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if c.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	if c.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		cctx, cancelTimeout = context.WithTimeout(cctx, c.Timeout)
		defer cancelTimeout()
	}

	tmpDir, err := os.MkdirTemp("", "resurate-convert-")
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "resume.pdf")
	if err := os.WriteFile(pdfPath, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}

	width, height := c.Width, c.Height
	if width <= 0 || height <= 0 {
		width, height = defaultWidth, defaultHeight
	}

	start := time.Now()
	var png []byte
	err = chromedp.Run(cctx,
		chromedp.EmulateViewport(width, height),
		chromedp.Navigate("file://"+pdfPath+"#page=1&toolbar=0&view=FitH"),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			png, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithFromSurface(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	if !IsPNG(png) {
		return nil, ErrNotPNG
	}
	telemetry.Debug("convert.rendered", map[string]any{
		"pdf_bytes":   len(pdf),
		"png_bytes":   len(png),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return png, nil
}

var _ Converter = (*Chrome)(nil)
