package output

import (
	"context"

	"github.com/runixlabs/runix/pkg/engine"
)

// Handler defines the interface for output formatting
type Handler interface {
	DisplayResults(ctx context.Context, results []*engine.Result) error
	DisplaySummary(ctx context.Context, totalSavings float64, count int) error
	Format() string
}
