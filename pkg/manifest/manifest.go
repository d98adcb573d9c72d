// Package manifest builds fetch-job manifests for the external fetcher.
// A manifest is newline-delimited JSON, one job per line; the fetcher
// downloads each URL and writes a compressed dump per symbol. This package
// never performs network requests itself.
package manifest

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"

	"github.com/quantfold/stockdump/pkg/errors"
)

// DefaultBulkURL is the Stooq daily bulk archive (no auth required).
const DefaultBulkURL = "https://stooq.pl/db/h/s/i/daily_csv.zip"

// Job is one fetch job: the fetcher downloads URL and stores the result
// as <symbol>.zst. Headers, when present, are sent verbatim.
type Job struct {
	Symbol  string            `json:"symbol"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

// YahooParams configures Yahoo Finance history-download jobs.
type YahooParams struct {
	Start    time.Time
	End      time.Time
	Interval string // 1d, 1wk, 1mo
	Crumb    string
	Cookie   string
}

// crumbPlaceholders and cookiePlaceholders are values users paste from
// documentation instead of real credentials; they must be rejected before
// they end up in a manifest.
var (
	crumbPlaceholders = map[string]struct{}{
		"YOUR_CRUMB":       {},
		"YOUR_CRUMB_VALUE": {},
		"<YOUR_CRUMB>":     {},
		"YOUR_CRUMB_HERE":  {},
	}
	cookiePlaceholders = map[string]struct{}{
		"YOUR_COOKIE":      {},
		"<YOUR_COOKIE>":    {},
		"YOUR_COOKIE_HERE": {},
		"B=...":            {},
	}
)

// HistoryURL builds a Yahoo Finance historical-data download URL. Periods
// are whole UTC days encoded as epoch seconds; the crumb is appended only
// when non-empty.
func HistoryURL(symbol string, start, end time.Time, interval, crumb string) string {
	period1 := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC).Unix()
	period2 := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC).Unix()

	u := fmt.Sprintf(
		"https://query1.finance.yahoo.com/v7/finance/download/%s"+
			"?period1=%d&period2=%d&interval=%s&events=history&includeAdjustedClose=true",
		url.PathEscape(symbol), period1, period2, url.QueryEscape(interval))
	if crumb != "" {
		u += "&crumb=" + url.QueryEscape(crumb)
	}
	return u
}

// BuildYahoo builds one job per ticker. The crumb and cookie are both
// required by Yahoo; missing or placeholder values are usage errors — the
// caller renders the remediation hints.
func BuildYahoo(tickers []string, p YahooParams) ([]Job, error) {
	if err := validateAuth(p.Crumb, p.Cookie); err != nil {
		return nil, err
	}

	if p.Interval == "" {
		p.Interval = "1d"
	}
	if p.End.IsZero() {
		p.End = time.Now().UTC()
	}
	if p.Start.IsZero() {
		p.Start = p.End.AddDate(-1, 0, 0)
	}

	jobs := make([]Job, 0, len(tickers))
	for _, ticker := range tickers {
		job := Job{
			Symbol: ticker,
			URL:    HistoryURL(ticker, p.Start, p.End, p.Interval, p.Crumb),
		}
		if p.Cookie != "" {
			job.Headers = map[string]string{"cookie": p.Cookie}
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// BuildBulk returns the single-job manifest for a bulk archive source.
func BuildBulk(symbol, rawURL string) Job {
	if rawURL == "" {
		rawURL = DefaultBulkURL
	}
	return Job{Symbol: symbol, URL: rawURL}
}

func validateAuth(crumb, cookie string) error {
	if _, ok := crumbPlaceholders[strings.ToUpper(crumb)]; crumb != "" && ok {
		return errors.New(errors.ErrorTypeUsage,
			"crumb is a placeholder value, not a real Yahoo Finance crumb")
	}
	if cookie != "" {
		if _, ok := cookiePlaceholders[strings.ToUpper(cookie)]; ok || strings.Contains(cookie, "...") {
			return errors.New(errors.ErrorTypeUsage,
				"cookie is a placeholder value, not a real Yahoo Finance cookie")
		}
	}
	if crumb == "" {
		return errors.New(errors.ErrorTypeUsage,
			"Yahoo Finance requires a crumb value for authentication")
	}
	if cookie == "" {
		return errors.New(errors.ErrorTypeUsage,
			"Yahoo Finance requires a cookie value for authentication")
	}
	return nil
}

// Write serializes jobs as newline-delimited JSON at output, creating
// parent directories as needed.
func Write(jobs []Job, output string) error {
	if len(jobs) == 0 {
		return errors.New(errors.ErrorTypeUsage, "manifest has no jobs")
	}

	var buf bytes.Buffer
	enc := gojson.NewEncoder(&buf)
	for _, job := range jobs {
		if err := enc.Encode(job); err != nil {
			return errors.Wrap(err, errors.ErrorTypeWrite, "failed to encode job")
		}
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return errors.Wrap(err, errors.ErrorTypeWrite, "failed to create manifest directory")
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(err, errors.ErrorTypeWrite, "failed to write manifest")
	}
	return nil
}
