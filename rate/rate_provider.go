package rate

import (
	"context"
)

// Quote is one raw upstream observation before deduplication.
type Quote struct {
	BuyRate   int64
	SellRate  int64
	UpdatedAt string
}

// RateProvider fetches the latest quote from an upstream feed. An empty
// UpdatedAt means the feed had nothing to report.
type RateProvider interface {
	Latest(ctx context.Context) (*Quote, error)
}
