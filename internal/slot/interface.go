package slot

import (
	"context"

	"weekly-scheduler/internal/model"
)

// Finder searches a day for a free range of the requested length.
type Finder interface {
	FindSlot(ctx context.Context, req Request) (model.TimeRange, error)
}
