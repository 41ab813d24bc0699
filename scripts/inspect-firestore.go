//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	flights "miq-flights/internal/firestore"
)

func main() {
	projectID := flag.String("project", "", "GCP project ID")
	collection := flag.String("collection", "flights", "Firestore collection name")
	date := flag.String("date", "", "Show one arrival date's records in table order (optional)")
	carrier := flag.String("carrier", "", "Filter by carrier (optional)")
	limit := flag.Int("limit", 10, "Max documents to return (0 for all)")
	countOnly := flag.Bool("count", false, "Only show counts per date")
	flag.Parse()

	if *projectID == "" {
		log.Fatal("-project is required")
	}

	ctx := context.Background()

	if *date != "" {
		showDate(ctx, *projectID, *collection, *date, *carrier)
		return
	}

	client, err := firestore.NewClient(ctx, *projectID)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer client.Close()

	coll := client.Collection(*collection)

	if *countOnly {
		showCounts(ctx, coll)
		return
	}

	var query firestore.Query = coll.Query
	if *carrier != "" {
		query = query.Where("carrier", "==", *carrier)
	}
	if *limit > 0 {
		query = query.Limit(*limit)
	}

	iter := query.Documents(ctx)
	count := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Fatalf("Error iterating documents: %v", err)
		}

		jsonData, _ := json.MarshalIndent(doc.Data(), "", "  ")
		fmt.Printf("--- Document: %s ---\n%s\n\n", doc.Ref.ID, string(jsonData))
		count++
	}

	fmt.Printf("Total documents shown: %d\n", count)
}

func showDate(ctx context.Context, projectID, collection, date, carrier string) {
	client, err := flights.New(ctx, projectID, collection)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer client.Close()

	records, err := client.GetRecordsForDate(ctx, date)
	if err != nil {
		log.Fatalf("Error reading records: %v", err)
	}

	shown := 0
	for _, rec := range records {
		if carrier != "" && rec.Carrier != carrier {
			continue
		}
		fmt.Printf("%-28s %-8s %-5s %-5s %s\n", rec.Carrier, rec.FlightNumber, rec.Origin, rec.ArrivalPort, rec.EstimatedArrivalTime)
		shown++
	}
	fmt.Printf("Flights on %s: %d\n", date, shown)
}

func showCounts(ctx context.Context, coll *firestore.CollectionRef) {
	counts := make(map[string]int)
	runs := make(map[string]string)
	total := 0

	iter := coll.Select("date", "run_id").Documents(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Fatalf("Error iterating documents: %v", err)
		}

		data := doc.Data()
		date, _ := data["date"].(string)
		counts[date]++
		if run, ok := data["run_id"].(string); ok {
			runs[date] = run
		}
		total++
	}

	dates := make([]string, 0, len(counts))
	for d := range counts {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	fmt.Println("Flights per arrival date:")
	fmt.Println("-------------------------")
	for _, d := range dates {
		fmt.Printf("%-12s %5d  %s\n", d, counts[d], runs[d])
	}
	fmt.Println("-------------------------")
	fmt.Printf("%-12s %5d\n", "TOTAL", total)
}
