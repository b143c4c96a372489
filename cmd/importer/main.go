package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"ipgeo-client/internal/app"
	"ipgeo-client/internal/config"
	"ipgeo-client/internal/models"
	"ipgeo-client/internal/service"
	"ipgeo-client/internal/validation"
)

// AddressRecord is one row of the import file.
type AddressRecord struct {
	Line int
	IP   string
}

// Lookup resolves an address through the geo API.
type Lookup interface {
	FetchGeo(ctx context.Context, ip string) (models.GeoRecord, error)
}

// History receives the imported lookups.
type History interface {
	Add(ctx context.Context, ip string, geo models.GeoRecord) models.HistoryEntry
	Len() int
}

func main() {
	file := flag.String("file", "", "Path to the CSV file to import")
	configDir := flag.String("config", "configs", "Directory containing app.env")
	flag.Parse()

	if *file == "" {
		fmt.Println("Error: --file flag is required")
		os.Exit(1)
	}

	fmt.Printf("Starting import from file: %s\n", *file)

	records, skipped, err := parseCSV(*file)
	if err != nil {
		fmt.Printf("Error parsing CSV: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Parsed %d addresses (%d invalid rows skipped)\n", len(records), skipped)

	// Load config
	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg.LogLevel)

	ctx := context.Background()
	client, err := app.NewClient(ctx, cfg, logger)
	if err != nil {
		fmt.Printf("Error opening client state: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	if !client.Session.Authenticated() {
		fmt.Printf("Error: %v, run geoclient login first\n", service.ErrNotSignedIn)
		client.Close()
		os.Exit(1)
	}

	imported, failed := importRecords(ctx, client.Geo, client.History, records, os.Stdout)

	fmt.Printf("Successfully imported %d records (%d lookups failed), history now holds %d entries\n",
		imported, failed, client.History.Len())
}

// parseCSV reads addresses from the first column. A header row is detected
// and skipped; rows that are not IP addresses are counted and dropped.
func parseCSV(filePath string) ([]AddressRecord, int, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return readAddresses(file)
}

func readAddresses(r io.Reader) ([]AddressRecord, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.TrimLeadingSpace = true

	var (
		records []AddressRecord
		skipped int
		line    int
	)
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, 0, fmt.Errorf("failed to read record: %w", err)
		}
		line++

		if len(record) == 0 {
			continue
		}
		ip := strings.TrimSpace(record[0])
		if line == 1 && strings.EqualFold(ip, "ip") {
			continue
		}
		if !validation.IsValidIP(ip) {
			skipped++
			continue
		}
		records = append(records, AddressRecord{Line: line, IP: ip})
	}

	return records, skipped, nil
}

func importRecords(ctx context.Context, lookup Lookup, history History, records []AddressRecord, out io.Writer) (int, int) {
	imported, failed := 0, 0
	for _, r := range records {
		geo, err := lookup.FetchGeo(ctx, r.IP)
		if err != nil {
			fmt.Fprintf(out, "line %d: %s: %v\n", r.Line, r.IP, err)
			failed++
			continue
		}
		history.Add(ctx, r.IP, geo)
		imported++
	}
	return imported, failed
}
