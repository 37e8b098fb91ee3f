// Package browser provides shared chromedp configuration for rendering reports.
package browser

import "github.com/chromedp/chromedp"

// ViewportWidth matches the report layout width plus margins.
const ViewportWidth = 760

// Options returns chromedp allocator options for rendering a local page.
// Reports never load remote content, so extensions and first-run UI are off.
func Options(headless bool) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),

		// Height grows with FullScreenshot; only the width matters
		chromedp.WindowSize(ViewportWidth, 1000),

		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
	)

	if headless {
		opts = append(opts, chromedp.Flag("disable-gpu", true))
	}

	return opts
}
