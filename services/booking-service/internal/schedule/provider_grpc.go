//go:build protogen

package schedule

import (
	"context"
	"time"

	"github.com/bookline/bookline/libs/grpcx"
	availabilityv1 "github.com/bookline/bookline/protos/gen/availability/v1"
	"github.com/bookline/bookline/services/booking-service/internal/model"
)

type grpcProvider struct {
	client availabilityv1.AvailabilityServiceClient
}

func NewProvider(addr string) (Provider, error) {
	if addr == "" {
		return nil, nil
	}
	conn, err := grpcx.Dial(context.Background(), addr, grpcx.DialOptions{Timeout: 3 * time.Second})
	if err != nil {
		return nil, err
	}
	return &grpcProvider{client: availabilityv1.NewAvailabilityServiceClient(conn)}, nil
}

func (p *grpcProvider) ListWindows(ctx context.Context, providerID, date string) ([]model.AvailabilityWindow, error) {
	resp, err := p.client.ListWindows(ctx, &availabilityv1.ListWindowsRequest{
		ProviderId: providerID,
		Date:       date,
	})
	if err != nil {
		return nil, err
	}

	var windows []model.AvailabilityWindow
	for _, w := range resp.GetWindows() {
		if w.GetStartUtc() == nil || w.GetEndUtc() == nil {
			continue
		}
		start := w.GetStartUtc().AsTime()
		end := w.GetEndUtc().AsTime()
		if !end.After(start) {
			continue
		}
		windows = append(windows, model.AvailabilityWindow{
			ID:         w.GetId(),
			ProviderID: providerID,
			Date:       date,
			Window:     model.TimeWindow{Start: start, End: end},
			Open:       w.GetIsOpen(),
		})
	}
	return windows, nil
}
