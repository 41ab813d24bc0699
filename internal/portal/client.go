// Package portal talks to the MIQ allocation portal's flight checker.
package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/googleapis/gax-go/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"

	"miq-flights/internal/model"
)

// DefaultURL is the flight-checker page; both the token handshake and the
// per-date queries are POSTed here.
const DefaultURL = "https://allocation.miq.govt.nz/portal/flight-checker"

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:81.0) Gecko/20100101 Firefox/81.0"

	tokenField = "flight_checker[_token]"
	dateField  = "flight_checker[chosenDate]"
)

// StatusError is returned when the portal answers with a non-2xx status.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

// Client issues the flight-checker requests. Cookies set anywhere along the
// way, including redirect hops and per-date responses, are kept in the
// client's jar and sent back on later requests.
type Client struct {
	url          string
	base         *url.URL
	jar          *cookiejar.Jar
	httpClient   *http.Client
	maxRetries   int
	retryInitial time.Duration
	retryMax     time.Duration
	log          logrus.FieldLogger

	mu      sync.Mutex
	adopted *Session
}

// NewClient creates a client for the flight checker at portalURL. Per-date
// fetches are retried up to maxRetries times on transient failures.
func NewClient(portalURL string, timeout time.Duration, maxRetries int, log logrus.FieldLogger) *Client {
	if portalURL == "" {
		portalURL = DefaultURL
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	// cookiejar.New never returns an error.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	base, _ := url.Parse(portalURL)
	return &Client{
		url:          portalURL,
		base:         base,
		jar:          jar,
		httpClient:   &http.Client{Timeout: timeout, Jar: jar},
		maxRetries:   maxRetries,
		retryInitial: 2 * time.Second,
		retryMax:     30 * time.Second,
		log:          log,
	}
}

// SetRetryBackoff overrides the bounds of the exponential retry backoff.
func (c *Client) SetRetryBackoff(initial, maxWait time.Duration) {
	c.retryInitial = initial
	c.retryMax = maxWait
}

// Acquire performs the initial handshake and returns the session needed
// for date queries. It is not retried.
func (c *Client) Acquire(ctx context.Context) (*Session, error) {
	body, err := c.post(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("requesting flight checker: %w", err)
	}
	s, err := ParseSession(string(body), c.sessionCookies())
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.adopted = s
	c.mu.Unlock()
	return s, nil
}

// FetchDate returns the flight-checker page for a single date.
func (c *Client) FetchDate(ctx context.Context, s *Session, date time.Time) (string, error) {
	form := url.Values{}
	form.Set(tokenField, s.Token)
	form.Set(dateField, date.Format(model.DateLayout))

	c.adopt(s)

	bo := gax.Backoff{Initial: c.retryInitial, Max: c.retryMax, Multiplier: 2}
	for attempt := 0; ; attempt++ {
		body, err := c.post(ctx, form)
		if err == nil {
			s.Cookies = c.sessionCookies()
			return string(body), nil
		}
		if attempt >= c.maxRetries || !retryable(ctx, err) {
			return "", fmt.Errorf("fetching %s: %w", date.Format(model.DateLayout), err)
		}

		wait := bo.Pause()
		c.log.WithFields(logrus.Fields{
			"date":    date.Format(model.DateLayout),
			"attempt": attempt + 1,
		}).Warnf("Fetch failed (%v), retrying in %s", err, wait.Round(time.Millisecond))
		if err := gax.Sleep(ctx, wait); err != nil {
			return "", err
		}
	}
}

// adopt loads the cookies of a session obtained elsewhere, such as from the
// browser acquirer, into the jar. Sessions this client acquired itself are
// already there.
func (c *Client) adopt(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.adopted == s || c.base == nil {
		return
	}
	c.jar.SetCookies(c.base, s.Cookies)
	c.adopted = s
}

// sessionCookies returns the cookies the jar would send to the portal.
func (c *Client) sessionCookies() []*http.Cookie {
	if c.base == nil {
		return nil
	}
	return c.jar.Cookies(c.base)
}

func (c *Client) post(ctx context.Context, form url.Values) ([]byte, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	setBrowserHeaders(req.Header)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, URL: c.url}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return data, nil
}

// setBrowserHeaders makes requests look like they come from a desktop
// Firefox. Accept-Encoding is left to the transport so compressed bodies
// are decoded for us.
func setBrowserHeaders(h http.Header) {
	h.Set("User-Agent", userAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.5")
	h.Set("DNT", "1")
	h.Set("Pragma", "no-cache")
	h.Set("Cache-Control", "no-cache")
	h.Set("Upgrade-Insecure-Requests", "1")
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return true
}
