package interfaces

import (
	"context"

	"github.com/perion0x/trading-supervisor/internal/types"
)

// NewsSource supplies scored news items mentioning a ticker.
type NewsSource interface {
	News(ctx context.Context, ticker string) ([]types.NewsItem, error)
}
