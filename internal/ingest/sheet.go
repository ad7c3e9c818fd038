package ingest

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mauv0809/expansion-radar/internal/models"
)

// SheetReader loads the ranked companies sheet from a local CSV file or an
// http(s) URL (for example a published spreadsheet CSV export).
type SheetReader struct {
	httpClient *http.Client
	backoff    time.Duration
}

func NewSheetReader() *SheetReader {
	return &SheetReader{
		httpClient: &http.Client{Timeout: defaultTimeout},
		backoff:    time.Second,
	}
}

// Read fetches and parses the sheet at source.
func (s *SheetReader) Read(ctx context.Context, source string) ([]models.Company, error) {
	if source == "" {
		return nil, fmt.Errorf("no companies source configured")
	}

	var data []byte
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		err := withRetry(ctx, maxAttempts, s.backoff, func() error {
			var err error
			data, err = get(ctx, s.httpClient, source)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("downloading sheet: %w", err)
		}
	} else {
		var err error
		data, err = os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("reading sheet: %w", err)
		}
	}

	resp, err := ReadCSV(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return ParseSheet(resp)
}
