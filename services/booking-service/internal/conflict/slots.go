package conflict

import (
	"time"

	"github.com/bookline/bookline/services/booking-service/internal/model"
)

// FreeSlots enumerates bookable windows for a service on one date by
// stepping through the provider's open windows and keeping every start
// that Evaluate accepts. Slot starts align to the window start plus a
// whole number of steps.
func FreeSlots(svc model.ServiceSnapshot, windows []model.AvailabilityWindow, existing []model.Reservation, step time.Duration, now time.Time) []model.TimeWindow {
	if step <= 0 || svc.DurationMinutes <= 0 {
		return nil
	}

	var slots []model.TimeWindow
	for _, w := range windows {
		if !w.Open {
			continue
		}
		for t := w.Window.Start; !t.Add(svc.Duration()).After(w.Window.End); t = t.Add(step) {
			res, err := Evaluate(Input{
				Start:    t,
				Service:  svc,
				Windows:  windows,
				Existing: existing,
				Now:      now,
			})
			if err != nil {
				continue
			}
			slots = append(slots, res.Window)
		}
	}
	return slots
}
