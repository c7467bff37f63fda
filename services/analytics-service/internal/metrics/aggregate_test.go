package metrics

import (
	"testing"
	"time"
)

func evt(kind, status string) Event {
	return Event{
		ReservationID: "r-1",
		ServiceID:     "svc-1",
		ServiceName:   "Massage",
		ProviderID:    "p-1",
		StartTime:     time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC),
		EndTime:       time.Date(2026, 9, 2, 10, 45, 0, 0, time.UTC),
		Status:        status,
		Event:         kind,
	}
}

func TestDeltaFor(t *testing.T) {
	tests := []struct {
		name   string
		event  Event
		want   Delta
		wantOK bool
	}{
		{
			"booked adds count and minutes",
			evt("booked", "pending"),
			Delta{Day: "2026-09-02", ProviderID: "p-1", ServiceID: "svc-1", ServiceName: "Massage", Booked: 1, BookedMinutes: 45},
			true,
		},
		{
			"cancelled returns minutes",
			evt("cancelled", "cancelled"),
			Delta{Day: "2026-09-02", ProviderID: "p-1", ServiceID: "svc-1", ServiceName: "Massage", Cancelled: 1, BookedMinutes: -45},
			true,
		},
		{
			"completed counts once",
			evt("updated", "completed"),
			Delta{Day: "2026-09-02", ProviderID: "p-1", ServiceID: "svc-1", ServiceName: "Massage", Completed: 1},
			true,
		},
		{
			"reschedule counts as rescheduled",
			evt("updated", "pending"),
			Delta{Day: "2026-09-02", ProviderID: "p-1", ServiceID: "svc-1", ServiceName: "Massage", Rescheduled: 1},
			true,
		},
		{
			"confirmation changes nothing",
			evt("updated", "confirmed"),
			Delta{},
			false,
		},
		{
			"unknown event changes nothing",
			evt("mystery", ""),
			Delta{},
			false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := DeltaFor(tc.event)
			if ok != tc.wantOK || got != tc.want {
				t.Errorf("DeltaFor() = (%+v, %v), want (%+v, %v)", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestFillDays(t *testing.T) {
	end := time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC)
	series := FillDays(end, 3, map[string]int{
		"2026-09-01": 2,
		"2026-09-03": 5,
	})
	want := []DayCount{
		{Day: "2026-09-01", Count: 2},
		{Day: "2026-09-02", Count: 0},
		{Day: "2026-09-03", Count: 5},
	}
	if len(series) != len(want) {
		t.Fatalf("len = %d, want %d", len(series), len(want))
	}
	for i := range want {
		if series[i] != want[i] {
			t.Errorf("series[%d] = %+v, want %+v", i, series[i], want[i])
		}
	}
}

func TestUtilization(t *testing.T) {
	tests := []struct {
		booked, open int
		want         float64
	}{
		{240, 480, 50},
		{0, 480, 0},
		{240, 0, 0},
		{-30, 480, 0},
		{600, 480, 100},
	}
	for _, tc := range tests {
		if got := Utilization(tc.booked, tc.open); got != tc.want {
			t.Errorf("Utilization(%d, %d) = %v, want %v", tc.booked, tc.open, got, tc.want)
		}
	}
}
