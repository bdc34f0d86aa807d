package interfaces

import (
	"context"

	"github.com/perion0x/trading-supervisor/internal/types"
)

// PriceSource supplies historical daily closes for a ticker, oldest first.
type PriceSource interface {
	History(ctx context.Context, ticker string) ([]types.PricePoint, error)
}
