package loader

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/pivolan/grades_analyzer/domain/models"
)

const defaultRemoteName = "sheet.xlsx"

// Fetcher downloads a remote workbook, typically a spreadsheet export link.
type Fetcher struct {
	Client *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{Client: &http.Client{Timeout: timeout}}
}

// Fetch downloads rawURL and loads it. The file type is taken from the URL
// path and falls back to xlsx, which is what sheet export links return.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*models.RawTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	req.Header.Set("Accept", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv,*/*")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", rawURL, resp.Status)
	}

	raw, err := Load(remoteName(rawURL), resp.Body)
	if err != nil {
		return nil, err
	}
	raw.Source = rawURL
	return raw, nil
}

func remoteName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return defaultRemoteName
	}
	name := path.Base(u.Path)
	if !Supported(name) {
		if u.Query().Get("format") == "csv" {
			return "sheet.csv"
		}
		return defaultRemoteName
	}
	return name
}
