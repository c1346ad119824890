// Package fetcher downloads marketplace search pages.
package fetcher

import (
	"context"
	"fmt"

	"github.com/sells-group/resale-cli/internal/model"
)

// Fetcher returns the raw body of a search page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetchError is a failed page download. It matches model.ErrFetchFailed.
type FetchError struct {
	URL        string
	StatusCode int
	Block      BlockType
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Block != BlockNone:
		return fmt.Sprintf("fetch %s: blocked by %s (status %d)", e.URL, e.Block, e.StatusCode)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return "fetch " + e.URL + ": failed"
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is reports the error as a FetchFailed kind.
func (e *FetchError) Is(target error) bool { return target == model.ErrFetchFailed }
