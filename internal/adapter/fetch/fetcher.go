package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"

	"gitlab.com/testsys2pcms.net/internal/config"
	"gitlab.com/testsys2pcms.net/internal/core/ports/primary"
	"gitlab.com/testsys2pcms.net/internal/core/ports/secondary"
	"gitlab.com/testsys2pcms.net/internal/static/errs"
)

var _ secondary.Fetcher = (*Fetcher)(nil)

// Fetcher loads exports from the local filesystem or over http(s)
type Fetcher struct {
	client *http.Client
	logger primary.Logger
}

// NewFetcher creates a fetcher. When a token is configured every http request
// carries it as a bearer credential.
func NewFetcher(ctx context.Context, cfg *config.FetchConfig, logger primary.Logger) *Fetcher {
	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
		client = oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, client), ts)
		client.Timeout = cfg.Timeout
	}
	return &Fetcher{
		client: client,
		logger: logger,
	}
}

// Fetch returns the raw bytes at rawURL
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid url %q: %v", errs.ErrFetchFailed, rawURL, err)
	}

	switch u.Scheme {
	case "file":
		return f.fetchFile(u)
	case "http", "https":
		return f.fetchHTTP(ctx, rawURL)
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", errs.ErrFetchFailed, u.Scheme)
	}
}

func (f *Fetcher) fetchFile(u *url.URL) ([]byte, error) {
	path := filepath.FromSlash(u.Path)
	if u.Host != "" && u.Host != "localhost" {
		path = filepath.FromSlash("//" + u.Host + u.Path)
	}
	f.logger.Debug("Reading export", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrFetchFailed, err)
	}
	return data, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrFetchFailed, err)
	}
	f.logger.Debug("Downloading export", "url", rawURL)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status code %d", errs.ErrFetchFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", errs.ErrFetchFailed, err)
	}
	return data, nil
}
