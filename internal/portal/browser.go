package portal

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// BrowserAcquirer performs the session handshake in headless Chrome, for
// when the portal only serves the flight checker to a real browser.
type BrowserAcquirer struct {
	url        string
	chromePath string
	timeout    time.Duration
}

// NewBrowserAcquirer creates an acquirer for the flight checker at url.
// An empty chromePath lets chromedp locate the browser.
func NewBrowserAcquirer(url, chromePath string, timeout time.Duration) *BrowserAcquirer {
	if url == "" {
		url = DefaultURL
	}
	return &BrowserAcquirer{url: url, chromePath: chromePath, timeout: timeout}
}

// Acquire loads the flight checker in a fresh headless Chrome, waits until
// the date picker has been rendered, and reads the session from the final
// page and the browser's cookies for the portal.
func (b *BrowserAcquirer) Acquire(ctx context.Context) (*Session, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if b.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(b.chromePath))
	}
	opts = append(opts,
		chromedp.Headless,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.UserAgent(userAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromeCtx, chromeCancel := chromedp.NewContext(allocCtx)
	defer chromeCancel()

	if b.timeout > 0 {
		var cancel context.CancelFunc
		chromeCtx, cancel = context.WithTimeout(chromeCtx, b.timeout)
		defer cancel()
	}

	var (
		page    string
		cookies []*network.Cookie
	)
	err := chromedp.Run(chromeCtx,
		chromedp.Navigate(b.url),
		chromedp.WaitReady(chosenDateSelector, chromedp.ByQuery),
		chromedp.OuterHTML(`html`, &page, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			cookies, err = network.GetCookies().WithURLs([]string{b.url}).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("loading flight checker in browser: %w", err)
	}

	return ParseSession(page, httpCookies(cookies))
}

func httpCookies(in []*network.Cookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(in))
	for _, c := range in {
		out = append(out, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		})
	}
	return out
}
