package io

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"regexp"

	"github.com/goccy/go-json"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/paveg/tidyframe/internal/table"
)

const (
	sheetsEndpoint = "https://sheets.googleapis.com/v4/spreadsheets"
	sheetsScope    = "https://www.googleapis.com/auth/spreadsheets.readonly"
	defaultSheet   = "Sheet1"
)

var spreadsheetID = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// SheetOptions locates a Google spreadsheet worksheet and the service
// account used to read it.
type SheetOptions struct {
	// URL is the spreadsheet's browser URL
	URL string
	// Credentials is the path of a service-account JSON key
	Credentials string
	// Sheet is the worksheet name (default "Sheet1")
	Sheet string
	// Headers describes the header rows; N defaults to 1
	Headers HeaderOptions
	// Endpoint overrides the Sheets API base URL
	Endpoint string
	// Client overrides the authorised HTTP client built from Credentials
	Client *http.Client
}

// SheetReader reads a worksheet through the Sheets values API
type SheetReader struct {
	ctx     context.Context
	options SheetOptions
}

// NewSheetReader creates a new Google Sheets reader
func NewSheetReader(ctx context.Context, options SheetOptions) *SheetReader {
	return &SheetReader{ctx: ctx, options: options}
}

type valueRange struct {
	Range  string     `json:"range"`
	Values [][]string `json:"values"`
}

// Read fetches every cell of the worksheet as formatted text and infers
// column kinds.
func (r *SheetReader) Read() (*table.Table, error) {
	opts := r.options
	match := spreadsheetID.FindStringSubmatch(opts.URL)
	if match == nil {
		return nil, fmt.Errorf("no spreadsheet id in URL %q", opts.URL)
	}
	if opts.Sheet == "" {
		opts.Sheet = defaultSheet
	}
	if opts.Endpoint == "" {
		opts.Endpoint = sheetsEndpoint
	}
	if opts.Headers.N == 0 {
		opts.Headers.N = 1
	}

	client := opts.Client
	if client == nil {
		var err error
		if client, err = r.authorize(opts.Credentials); err != nil {
			return nil, err
		}
	}

	endpoint := fmt.Sprintf("%s/%s/values/%s", opts.Endpoint, match[1], url.PathEscape(opts.Sheet))
	req, err := http.NewRequestWithContext(r.ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building sheets request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching worksheet %q: %w", opts.Sheet, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching worksheet %q: %s", opts.Sheet, resp.Status)
	}

	var vr valueRange
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("decoding worksheet %q: %w", opts.Sheet, err)
	}
	return recordsToTable(vr.Values, true, opts.Headers, nil)
}

func (r *SheetReader) authorize(credentials string) (*http.Client, error) {
	if credentials == "" {
		return nil, fmt.Errorf("reading a Google spreadsheet requires a service-account credentials file")
	}
	path, err := homedir.Expand(credentials)
	if err != nil {
		return nil, fmt.Errorf("expanding credentials path: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(r.ctx, data, sheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}
	return oauth2.NewClient(r.ctx, creds.TokenSource), nil
}
