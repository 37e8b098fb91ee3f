package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/ibeckermayer/sentiview/internal/browser"
)

// Output formats
const (
	FormatHTML = "html"
	FormatJPG  = "jpg"
)

// renderTimeout bounds a single headless render.
const renderTimeout = 60 * time.Second

// Filename returns <user>_posts_<unix millis>.<ext>. Characters that are
// unsafe in file names are replaced with underscores.
func Filename(username string, at time.Time, ext string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, username)
	if name == "" {
		name = "all"
	}
	return fmt.Sprintf("%s_posts_%d.%s", name, at.UnixMilli(), ext)
}

// Save writes the report into dir as html or jpg and returns the file path.
func (r *Report) Save(ctx context.Context, dir, format string) (string, error) {
	var data []byte
	switch strings.ToLower(format) {
	case FormatHTML, "":
		format = FormatHTML
		data = []byte(r.HTMLBody)
	case FormatJPG, "jpeg":
		format = FormatJPG
		img, err := RenderJPEG(ctx, r.HTMLBody)
		if err != nil {
			return "", err
		}
		data = img
	default:
		return "", fmt.Errorf("unknown report format %q", format)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(dir, Filename(r.Username, r.CreatedAt, format))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// RenderJPEG loads html into a headless Chrome page and captures the full
// page as a JPEG.
func RenderJPEG(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, renderTimeout)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, browser.Options(true)...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var buf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.FullScreenshot(&buf, 90),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf, nil
}
