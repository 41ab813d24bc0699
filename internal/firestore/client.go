package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"miq-flights/internal/model"
)

const batchSize = 250 // Stay well under Firestore's 500 operation limit

// Client wraps the Firestore client for flight record operations.
type Client struct {
	client     *firestore.Client
	collection string
}

// New creates a new Firestore client.
func New(ctx context.Context, projectID, collection string) (*Client, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	return &Client{
		client:     client,
		collection: collection,
	}, nil
}

// Close closes the Firestore client.
func (c *Client) Close() error {
	return c.client.Close()
}

// ReplaceRecordsForDate replaces every stored record for date with records.
// Documents are keyed by date and position, so repeated rows are kept.
func (c *Client) ReplaceRecordsForDate(ctx context.Context, date string, records []model.FlightRecord, runID string) error {
	coll := c.client.Collection(c.collection)

	if err := c.deleteRecordsForDate(ctx, date); err != nil {
		return fmt.Errorf("deleting existing records: %w", err)
	}

	for i := 0; i < len(records); i += batchSize {
		end := min(i+batchSize, len(records))
		batch := c.client.Batch()

		for j, rec := range records[i:end] {
			batch.Set(coll.Doc(docID(date, i+j)), recordToMap(rec, i+j, runID))
		}

		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("committing batch: %w", err)
		}
	}

	return nil
}

// deleteRecordsForDate deletes all documents for a given date.
func (c *Client) deleteRecordsForDate(ctx context.Context, date string) error {
	query := c.client.Collection(c.collection).Where("date", "==", date)

	for {
		iter := query.Limit(batchSize).Documents(ctx)
		batch := c.client.Batch()
		numDeleted := 0

		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return fmt.Errorf("iterating documents: %w", err)
			}
			batch.Delete(doc.Ref)
			numDeleted++
		}

		if numDeleted == 0 {
			return nil
		}

		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("committing delete batch: %w", err)
		}

		if numDeleted < batchSize {
			return nil
		}
	}
}

// GetRecordsForDate returns the stored records for date in table order.
func (c *Client) GetRecordsForDate(ctx context.Context, date string) ([]model.FlightRecord, error) {
	iter := c.client.Collection(c.collection).
		Where("date", "==", date).
		OrderBy("seq", firestore.Asc).
		Documents(ctx)

	var records []model.FlightRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating documents: %w", err)
		}

		rec, err := mapToRecord(doc.Data())
		if err != nil {
			return nil, fmt.Errorf("parsing document %s: %w", doc.Ref.ID, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func docID(date string, seq int) string {
	return fmt.Sprintf("%s-%04d", date, seq)
}

// recordToMap converts a FlightRecord to a Firestore document map.
func recordToMap(rec model.FlightRecord, seq int, runID string) map[string]interface{} {
	return map[string]interface{}{
		"date":                   rec.Date(),
		"seq":                    seq,
		"day_of_week":            rec.DayOfWeek,
		"carrier":                rec.Carrier,
		"flight_number":          rec.FlightNumber,
		"origin":                 rec.Origin,
		"arrival_port":           rec.ArrivalPort,
		"estimated_arrival_time": rec.EstimatedArrivalTime,
		"run_id":                 runID,
	}
}

// mapToRecord converts a Firestore document map to a FlightRecord.
func mapToRecord(m map[string]interface{}) (model.FlightRecord, error) {
	rec := model.FlightRecord{}

	date, ok := m["date"].(string)
	if !ok {
		return rec, fmt.Errorf("missing date")
	}
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return rec, fmt.Errorf("bad date %q: %w", date, err)
	}
	rec.DateOfArrival = d

	if v, ok := m["day_of_week"].(string); ok {
		rec.DayOfWeek = v
	}
	if v, ok := m["carrier"].(string); ok {
		rec.Carrier = v
	}
	if v, ok := m["flight_number"].(string); ok {
		rec.FlightNumber = v
	}
	if v, ok := m["origin"].(string); ok {
		rec.Origin = v
	}
	if v, ok := m["arrival_port"].(string); ok {
		rec.ArrivalPort = v
	}
	if v, ok := m["estimated_arrival_time"].(string); ok {
		rec.EstimatedArrivalTime = v
	}

	return rec, nil
}
