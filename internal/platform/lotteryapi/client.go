// Package lotteryapi fetches draw results from the public lottery results feed.
package lotteryapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/natillera-ledger/internal/config"
	"github.com/natillera-ledger/internal/domain/lottery"
)

// Client implements lottery.Fetcher against GET <base>/<YYYY-MM-DD>
type Client struct {
	httpClient *http.Client
	baseURL    string
	slug       string
	name       string
	logger     *slog.Logger
}

// NewClient creates a results client for the configured draw
func NewClient(logger *slog.Logger, cfg *config.LotteryConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		slug:       cfg.Slug,
		name:       cfg.Name,
		logger:     logger,
	}
}

// drawResult is one element of the feed's JSON array
type drawResult struct {
	Lottery string      `json:"lottery"`
	Slug    string      `json:"slug"`
	Date    string      `json:"date"`
	Result  looseString `json:"result"`
	Series  *looseString `json:"series"`
}

// looseString accepts both JSON strings and numbers
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = looseString(n.String())
	return nil
}

// FetchResult retrieves the configured lottery's draw on drawDate
func (c *Client) FetchResult(ctx context.Context, drawDate time.Time) (*lottery.Result, error) {
	day := drawDate.Format(time.DateOnly)
	url := fmt.Sprintf("%s/%s", c.baseURL, day)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build lottery request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Lottery feed request failed", "url", url, "error", err)
		return nil, fmt.Errorf("failed to fetch lottery results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Lottery feed returned unexpected status", "url", url, "status", resp.StatusCode)
		return nil, fmt.Errorf("lottery feed returned status %d", resp.StatusCode)
	}

	var results []drawResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("unexpected lottery feed payload: %w", err)
	}

	for _, r := range results {
		if r.Slug != c.slug && r.Lottery != c.name {
			continue
		}

		res := &lottery.Result{
			Slug:      c.slug,
			Lottery:   c.name,
			DrawDate:  time.Date(drawDate.Year(), drawDate.Month(), drawDate.Day(), 0, 0, 0, 0, time.UTC),
			Result:    string(r.Result),
			FetchedAt: time.Now(),
		}
		if r.Lottery != "" {
			res.Lottery = r.Lottery
		}
		if r.Series != nil {
			series := string(*r.Series)
			res.Series = &series
		}

		c.logger.Info("Fetched lottery result", "slug", c.slug, "draw_date", day, "result", res.Result)
		return res, nil
	}

	return nil, lottery.ErrResultUnavailable{Slug: c.slug, DrawDate: drawDate}
}
