package portal

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"miq-flights/internal/daterange"
)

// TokenMarker must appear in the flight-checker page before anything else is read.
const TokenMarker = "flight_checker__token"

const (
	tokenSelector      = `form[name="flight_checker"] > input#flight_checker__token`
	chosenDateSelector = `input#flight_checker_chosenDate`
)

var (
	ErrTokenMarkerMissing = errors.New("page does not contain the flight_checker__token snippet")
	ErrTokenMissing       = errors.New("flight checker form has no token value")
	ErrDateRangeMissing   = errors.New("chosen date input has no min/max attributes")
)

// Session carries what the portal hands out on the first visit and expects
// back on every date query.
type Session struct {
	Token   string
	Cookies []*http.Cookie
	Range   daterange.Range
}

// ParseSession reads the anti-forgery token and the selectable date range
// from the flight-checker page.
func ParseSession(page string, cookies []*http.Cookie) (*Session, error) {
	if !strings.Contains(page, TokenMarker) {
		return nil, ErrTokenMarkerMissing
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	token, _ := doc.Find(tokenSelector).First().Attr("value")
	if token == "" {
		return nil, ErrTokenMissing
	}

	chosen := doc.Find(chosenDateSelector).First()
	minDate, okMin := chosen.Attr("min")
	maxDate, okMax := chosen.Attr("max")
	if !okMin || !okMax {
		return nil, ErrDateRangeMissing
	}

	r, err := daterange.Parse(minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("reading date bounds: %w", err)
	}

	return &Session{
		Token:   token,
		Cookies: cookies,
		Range:   r,
	}, nil
}
