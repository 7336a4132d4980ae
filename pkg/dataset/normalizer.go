// Package dataset fetches a resource by URL and normalizes it into an
// api.Dataset: an ordered column list plus records keyed by column.
//
// The format is chosen from the response content type and the URL path
// extension. Delimited text, spreadsheets, Parquet, JSON, and HTML tables
// become tables; anything else becomes a single-row "text" dataset.
package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/Janani-6874/dataagent/pkg/api"
	"github.com/Janani-6874/dataagent/pkg/debug"
	"github.com/Janani-6874/dataagent/pkg/observability"
)

// Format names the parser selected for a resource.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatExcel   Format = "excel"
	FormatParquet Format = "parquet"
	FormatJSON    Format = "json"
	FormatHTML    Format = "html"
	FormatText    Format = "text"
)

const (
	defaultUserAgent    = "Mozilla/5.0 (compatible; dataagent/1.0)"
	defaultTimeout      = 15 * time.Second
	defaultMaxBodyBytes = 50 << 20
)

// FetchError reports a failure to retrieve a resource, including non-2xx
// HTTP responses.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ErrBodyTooLarge is returned when a resource exceeds the configured size cap.
var ErrBodyTooLarge = errors.New("response body exceeds size limit")

// Options configures a Normalizer.
type Options struct {
	// HTTPClient is used for http and https URLs. When nil a client with
	// Timeout is created.
	HTTPClient *http.Client

	// Timeout bounds a single fetch. Defaults to 15s.
	Timeout time.Duration

	// UserAgent is sent with every HTTP request.
	UserAgent string

	// MaxBodyBytes caps the size of a fetched resource. Defaults to 50 MiB.
	MaxBodyBytes int64

	// StripColumnBrackets removes a bracketed suffix such as "[1]" from
	// column names and trims the remainder.
	StripColumnBrackets bool

	// S3 retrieves s3:// URLs. When nil a client is built lazily from the
	// default AWS credential chain using S3Region.
	S3 ObjectGetter

	// S3Region overrides the region for the lazily built S3 client.
	S3Region string
}

// Normalizer turns URLs into datasets. It is safe for concurrent use.
type Normalizer struct {
	client *http.Client
	opts   Options
	s3     *s3Source
}

// New creates a Normalizer, filling unset options with defaults.
func New(opts Options) *Normalizer {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Normalizer{
		client: client,
		opts:   opts,
		s3:     newS3Source(opts.S3, opts.S3Region),
	}
}

// resource is a fetched body with the metadata used for dispatch.
type resource struct {
	body        []byte
	contentType string
	ext         string
}

// Normalize fetches rawURL and converts it into a Dataset. Every failure
// is returned as an error value.
func (n *Normalizer) Normalize(ctx context.Context, rawURL string) (*api.Dataset, error) {
	start := time.Now()

	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, n.opts.Timeout)
	defer cancel()

	res, err := n.fetch(ctx, u)
	if err != nil {
		observability.FetchTotal.WithLabelValues("none", "error").Inc()
		return nil, err
	}

	format := Detect(res.contentType, res.ext)
	ds, err := n.parse(format, res)
	status := "ok"
	if err != nil {
		status = "error"
	}
	observability.FetchTotal.WithLabelValues(string(format), status).Inc()
	observability.FetchDuration.WithLabelValues(string(format)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("parsing %s as %s: %w", rawURL, format, err)
	}

	debug.Log("fetch", "normalized dataset",
		"url", rawURL, "format", format, "columns", len(ds.Columns), "rows", ds.Len())
	return ds, nil
}

func (n *Normalizer) fetch(ctx context.Context, u *url.URL) (*resource, error) {
	switch u.Scheme {
	case "http", "https":
		return n.fetchHTTP(ctx, u)
	case "s3":
		return n.s3.fetch(ctx, u, n.opts.MaxBodyBytes)
	default:
		return nil, &FetchError{URL: u.String(), Err: fmt.Errorf("unsupported URL scheme %q", u.Scheme)}
	}
}

func (n *Normalizer) fetchHTTP(ctx context.Context, u *url.URL) (*resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &FetchError{URL: u.String(), Err: err}
	}
	req.Header.Set("User-Agent", n.opts.UserAgent)

	debug.Log("fetch", "GET", "url", u.String())
	resp, err := n.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: u.String(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{URL: u.String(), StatusCode: resp.StatusCode}
	}

	body, err := readCapped(resp.Body, n.opts.MaxBodyBytes)
	if err != nil {
		return nil, &FetchError{URL: u.String(), Err: err}
	}

	return &resource{
		body:        body,
		contentType: strings.ToLower(resp.Header.Get("Content-Type")),
		ext:         extension(u),
	}, nil
}

// readCapped reads at most limit bytes and fails if the body is longer.
func readCapped(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, ErrBodyTooLarge
	}
	return body, nil
}

// extension returns the lowercased file extension of the URL path,
// ignoring any query string.
func extension(u *url.URL) string {
	return strings.ToLower(path.Ext(u.Path))
}

// Detect selects a parser from the content type and path extension. The
// first matching rule wins.
func Detect(contentType, ext string) Format {
	contentType = strings.ToLower(contentType)
	switch {
	case strings.Contains(contentType, "text/csv") || ext == ".csv":
		return FormatCSV
	case strings.Contains(contentType, "spreadsheetml") || strings.Contains(contentType, "ms-excel") ||
		ext == ".xlsx" || ext == ".xls":
		return FormatExcel
	case ext == ".parquet":
		return FormatParquet
	case strings.Contains(contentType, "application/json") || ext == ".json":
		return FormatJSON
	case strings.Contains(contentType, "text/html"):
		return FormatHTML
	default:
		return FormatText
	}
}

func (n *Normalizer) parse(format Format, res *resource) (*api.Dataset, error) {
	switch format {
	case FormatCSV:
		header, rows, err := parseCSV(res.body)
		if err != nil {
			return nil, err
		}
		return n.buildTable(header, rows), nil

	case FormatExcel:
		header, rows, err := parseExcel(res.body)
		if err != nil {
			return nil, err
		}
		return n.buildTable(header, rows), nil

	case FormatParquet:
		ds, err := ReadParquet(bytes.NewReader(res.body), int64(len(res.body)))
		if err != nil {
			return nil, err
		}
		n.renameColumns(ds)
		return ds, nil

	case FormatJSON:
		ds, err := flattenJSON(res.body)
		if err != nil {
			debug.Log("fetch", "json flatten failed, using text", "error", err)
			return api.NewTextDataset(string(res.body)), nil
		}
		n.renameColumns(ds)
		return ds, nil

	case FormatHTML:
		header, rows, text, err := parseHTML(res.body)
		if err != nil {
			return nil, err
		}
		if header == nil {
			return api.NewTextDataset(text), nil
		}
		return n.buildTable(header, rows), nil

	default:
		return api.NewTextDataset(string(res.body)), nil
	}
}

// buildTable names columns and types cells for a string grid.
func (n *Normalizer) buildTable(header []string, rows [][]string) *api.Dataset {
	cols := n.columnNames(header)
	return typedTable(cols, rows)
}

// renameColumns applies column name rules to a dataset that already has
// typed values, rewriting record keys to match.
func (n *Normalizer) renameColumns(ds *api.Dataset) {
	renamed := n.columnNames(ds.Columns)
	changed := false
	for i := range renamed {
		if renamed[i] != ds.Columns[i] {
			changed = true
			break
		}
	}
	if !changed {
		return
	}
	for i, rec := range ds.Data {
		out := make(map[string]any, len(renamed))
		for j, old := range ds.Columns {
			out[renamed[j]] = rec[old]
		}
		ds.Data[i] = out
	}
	ds.Columns = renamed
	if err := ds.Validate(); err != nil {
		slog.Warn("renamed dataset failed validation", "error", err)
	}
}

func (n *Normalizer) columnNames(raw []string) []string {
	return ColumnNames(raw, n.opts.StripColumnBrackets)
}
