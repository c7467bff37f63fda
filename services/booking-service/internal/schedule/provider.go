// Package schedule resolves provider availability windows, either over
// gRPC from provider-service or from the shared schema.
package schedule

import (
	"context"

	"github.com/bookline/bookline/services/booking-service/internal/model"
)

type Provider interface {
	ListWindows(ctx context.Context, providerID, date string) ([]model.AvailabilityWindow, error)
}
