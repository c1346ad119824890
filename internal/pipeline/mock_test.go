package pipeline

import (
	"context"
	"strings"

	"github.com/stretchr/testify/mock"
)

// --- Fetcher Mock ---

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// urlWith matches URLs containing every fragment.
func urlWith(fragments ...string) any {
	return mock.MatchedBy(func(u string) bool {
		for _, f := range fragments {
			if !strings.Contains(u, f) {
				return false
			}
		}
		return true
	})
}

// urlWithout matches URLs containing none of the fragments.
func urlWithout(fragments ...string) any {
	return mock.MatchedBy(func(u string) bool {
		for _, f := range fragments {
			if strings.Contains(u, f) {
				return false
			}
		}
		return true
	})
}
