package secondary

import "context"

type Fetcher interface {
	// Fetch returns the raw bytes found at url (file:// or http(s)://)
	Fetch(ctx context.Context, url string) ([]byte, error)
}
