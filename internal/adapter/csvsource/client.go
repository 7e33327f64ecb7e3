// Package csvsource fetches the raw HFMD CSV dataset from an HTTP(S) URL or
// a local file and parses it into a domain.RawTable.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aleyanazifa/hfmd-analytics-service/internal/domain"
)

// Client implements domain.TableFetcher. The whole resource is read into
// memory; there is no streaming or pagination. The upstream dashboard fetched
// with no timeout at all, so the client timeout here is a deliberate
// tightening.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a dataset fetcher with the given HTTP timeout.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Fetch retrieves and parses the dataset at source. Every I/O, transport, or
// CSV parse failure comes back as a *domain.FetchError; callers halt the
// pipeline on it since no partial dataset is acceptable downstream.
func (c *Client) Fetch(ctx context.Context, source string) (domain.RawTable, error) {
	body, closeBody, err := c.open(ctx, source)
	if err != nil {
		return domain.RawTable{}, &domain.FetchError{Source: source, Err: err}
	}
	defer closeBody()

	table, err := parseTable(body)
	if err != nil {
		return domain.RawTable{}, &domain.FetchError{Source: source, Err: err}
	}

	c.logger.Debug("dataset fetched", "source", source, "columns", len(table.Columns), "rows", len(table.Rows))
	return table, nil
}

func (c *Client) open(ctx context.Context, source string) (io.Reader, func(), error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("create request: %w", err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return resp.Body, func() { resp.Body.Close() }, nil
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// parseTable reads the resource as comma-separated UTF-8 with a header row.
// Rows are allowed to be ragged; normalization pads by position.
func parseTable(r io.Reader) (domain.RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return domain.RawTable{}, errors.New("empty dataset: no header row")
	}
	return domain.RawTable{Columns: records[0], Rows: records[1:]}, nil
}
