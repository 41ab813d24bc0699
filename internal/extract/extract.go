// Package extract pulls flight arrivals out of a flight-checker results page.
package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"miq-flights/internal/daterange"
	"miq-flights/internal/model"
)

const (
	carrierBlockSelector  = "div.accordion__item"
	carrierHeaderSelector = "div.pt-4.pb-2.pb-sm-2"
	carrierNameSelector   = "h3 > button"
	flightRowSelector     = "div.pb-10 > table > tbody > tr.d-block.d-sm-table-row"

	// flight number, origin, arrival port, estimated arrival time
	fieldsPerRow = 4
)

// Skipped describes markup that could not be turned into a record.
type Skipped struct {
	Block   int // 1-based carrier block index
	Row     int // 1-based row index within the block, 0 for the block itself
	Carrier string
	Cells   []string
	Reason  string
}

func (s Skipped) String() string {
	if s.Row == 0 {
		return fmt.Sprintf("block %d: %s", s.Block, s.Reason)
	}
	return fmt.Sprintf("block %d (%s) row %d: %s %q", s.Block, s.Carrier, s.Row, s.Reason, s.Cells)
}

// Result holds the records found on one page, in document order.
type Result struct {
	Records []model.FlightRecord
	Skipped []Skipped
}

// Flights parses the page fetched for date. Rows with fewer than four
// non-empty cells are reported in Skipped instead of producing a record.
func Flights(date time.Time, page string) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return Result{}, fmt.Errorf("parsing HTML: %w", err)
	}

	day := daterange.Day(date)
	dayOfWeek := day.Weekday().String()

	var res Result
	doc.Find(carrierBlockSelector).Each(func(i int, block *goquery.Selection) {
		carrier := ownText(block.ChildrenFiltered(carrierHeaderSelector).Find(carrierNameSelector).First())
		if carrier == "" {
			res.Skipped = append(res.Skipped, Skipped{Block: i + 1, Reason: "no carrier name"})
			return
		}

		block.Find(flightRowSelector).Each(func(j int, row *goquery.Selection) {
			cells := cellTexts(row)
			if len(cells) < fieldsPerRow {
				res.Skipped = append(res.Skipped, Skipped{
					Block:   i + 1,
					Row:     j + 1,
					Carrier: carrier,
					Cells:   cells,
					Reason:  fmt.Sprintf("expected %d non-empty cells, got %d", fieldsPerRow, len(cells)),
				})
				return
			}

			res.Records = append(res.Records, model.FlightRecord{
				DateOfArrival:        day,
				DayOfWeek:            dayOfWeek,
				Carrier:              carrier,
				FlightNumber:         cells[0],
				Origin:               cells[1],
				ArrivalPort:          cells[2],
				EstimatedArrivalTime: cells[3],
			})
		})
	})

	return res, nil
}

// cellTexts returns the trimmed, non-empty text nodes sitting directly
// under the row's td elements. Labels wrapped in child elements (the
// mobile-layout captions) are not included.
func cellTexts(row *goquery.Selection) []string {
	var cells []string
	row.ChildrenFiltered("td").Each(func(_ int, td *goquery.Selection) {
		for _, text := range textNodes(td) {
			if text = strings.TrimSpace(text); text != "" {
				cells = append(cells, text)
			}
		}
	})
	return cells
}

// ownText joins the direct text nodes of the first node in sel.
func ownText(sel *goquery.Selection) string {
	return strings.TrimSpace(strings.Join(textNodes(sel), ""))
}

func textNodes(sel *goquery.Selection) []string {
	if sel.Length() == 0 {
		return nil
	}
	var out []string
	for c := sel.Get(0).FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			out = append(out, c.Data)
		}
	}
	return out
}
