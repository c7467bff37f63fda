// Package conflict decides whether a candidate reservation may occupy a
// time slot. It is pure: callers fetch availability and existing
// reservations up front, and identical inputs always produce identical
// outcomes.
package conflict

import (
	"errors"
	"time"

	"github.com/bookline/bookline/services/booking-service/internal/model"
)

var (
	// ErrPastBooking rejects candidates that start before now.
	ErrPastBooking = errors.New("reservation starts in the past")
	// ErrOutsideAvailability rejects candidates not covered by an open
	// availability window. A date with no declared windows is unavailable,
	// not open by default.
	ErrOutsideAvailability = errors.New("time not within provider availability")
	// ErrSlotCollision rejects candidates that overlap another active
	// reservation once buffers are applied.
	ErrSlotCollision = errors.New("time collides with another reservation")
)

// Input carries everything Evaluate needs. Existing must hold the
// provider's non-cancelled reservations, with the instance being
// rescheduled (if any) already excluded.
type Input struct {
	Start    time.Time
	Service  model.ServiceSnapshot
	Windows  []model.AvailabilityWindow
	Existing []model.Reservation
	Now      time.Time
}

type Result struct {
	Window model.TimeWindow
}

// Evaluate runs the conflict checks in order: past-booking, availability
// containment, then pairwise overlap with buffers. The overlap test is
// commutative, so the outcome does not depend on the order of Existing.
func Evaluate(in Input) (Result, error) {
	if in.Start.Before(in.Now) {
		return Result{}, ErrPastBooking
	}

	candidate := model.TimeWindow{
		Start: in.Start,
		End:   in.Start.Add(in.Service.Duration()),
	}

	if !coveredByOpenWindow(candidate, in.Windows) {
		return Result{}, ErrOutsideAvailability
	}

	for _, other := range in.Existing {
		if other.Status == model.StatusCancelled {
			continue
		}
		// The buffer is the larger of the two services' demands, not the
		// sum: it is the minimum gap required between the reservations.
		buffer := maxBuffer(in.Service, other.Service)
		if candidate.Start.Before(other.Window.End.Add(buffer)) &&
			other.Window.Start.Before(candidate.End.Add(buffer)) {
			return Result{}, ErrSlotCollision
		}
	}

	return Result{Window: candidate}, nil
}

// coveredByOpenWindow requires the candidate to sit fully inside at least
// one open window and to stay clear of every explicit block. Blocks win
// over open windows they overlap.
func coveredByOpenWindow(candidate model.TimeWindow, windows []model.AvailabilityWindow) bool {
	contained := false
	for _, w := range windows {
		if !w.Open {
			if candidate.Overlaps(w.Window) {
				return false
			}
			continue
		}
		if w.Window.Contains(candidate) {
			contained = true
		}
	}
	return contained
}

func maxBuffer(a, b model.ServiceSnapshot) time.Duration {
	if a.BufferMinutes >= b.BufferMinutes {
		return a.Buffer()
	}
	return b.Buffer()
}
