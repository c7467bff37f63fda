// Package metrics turns reservation events into daily-aggregate deltas
// and provides the pure series/ratio math behind the dashboards.
package metrics

import (
	"time"
)

// Event mirrors the payload booking-service publishes per mutation.
type Event struct {
	ReservationID string    `json:"reservation_id"`
	ServiceID     string    `json:"service_id"`
	ServiceName   string    `json:"service_name"`
	ProviderID    string    `json:"provider_id"`
	CustomerID    string    `json:"customer_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
	Event         string    `json:"event"`
}

// Delta is the set of increments one event applies to the daily aggregate
// row keyed by (day, provider, service). Price carries through as text so
// the numeric addition happens in SQL.
type Delta struct {
	Day           string
	ProviderID    string
	ServiceID     string
	ServiceName   string
	Booked        int
	Rescheduled   int
	Cancelled     int
	Completed     int
	Deleted       int
	BookedMinutes int
}

// DeltaFor maps an event to its aggregate increments; ok is false for
// events that change no metric.
func DeltaFor(evt Event) (Delta, bool) {
	d := Delta{
		Day:         evt.StartTime.UTC().Format("2006-01-02"),
		ProviderID:  evt.ProviderID,
		ServiceID:   evt.ServiceID,
		ServiceName: evt.ServiceName,
	}

	switch evt.Event {
	case "booked":
		d.Booked = 1
		d.BookedMinutes = int(evt.EndTime.Sub(evt.StartTime) / time.Minute)
	case "updated":
		switch evt.Status {
		case "completed":
			d.Completed = 1
		case "pending":
			// A reschedule resets to pending; confirm/reject change no count.
			d.Rescheduled = 1
		default:
			return Delta{}, false
		}
	case "cancelled":
		d.Cancelled = 1
		d.BookedMinutes = -int(evt.EndTime.Sub(evt.StartTime) / time.Minute)
	case "deleted":
		d.Deleted = 1
	default:
		return Delta{}, false
	}
	return d, true
}

type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// FillDays expands a sparse day->count map into a dense series ending at
// end (inclusive), zero-filling missing days. Dashboards always plot a
// fixed-length window.
func FillDays(end time.Time, days int, counts map[string]int) []DayCount {
	if days <= 0 {
		return nil
	}
	series := make([]DayCount, 0, days)
	first := end.UTC().AddDate(0, 0, -(days - 1))
	for i := 0; i < days; i++ {
		day := first.AddDate(0, 0, i).Format("2006-01-02")
		series = append(series, DayCount{Day: day, Count: counts[day]})
	}
	return series
}

// Utilization is booked minutes over open minutes as a percentage,
// clamped to [0,100]. Zero availability reads as zero utilization.
func Utilization(bookedMinutes, openMinutes int) float64 {
	if openMinutes <= 0 || bookedMinutes <= 0 {
		return 0
	}
	pct := float64(bookedMinutes) / float64(openMinutes) * 100
	if pct > 100 {
		return 100
	}
	return pct
}
