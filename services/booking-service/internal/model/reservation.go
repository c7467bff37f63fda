package model

import "time"

// Status is the reservation lifecycle state. Rejected, completed and
// cancelled are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// TimeWindow is a half-bounded interval on the shared UTC timeline.
// Start < End always holds for persisted windows.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Overlaps reports strict interval overlap; exactly touching windows do not
// overlap.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// Contains reports whether other lies fully inside w (boundaries included).
func (w TimeWindow) Contains(other TimeWindow) bool {
	return !other.Start.Before(w.Start) && !other.End.After(w.End)
}

// AvailabilityWindow is a provider-declared window for one date.
// Open=false marks an explicit block (break/holiday) that suppresses any
// otherwise-open window it overlaps.
type AvailabilityWindow struct {
	ID         string
	ProviderID string
	Date       string // YYYY-MM-DD on the shared timeline
	Window     TimeWindow
	Open       bool
}

// ServiceSnapshot is the slice of a catalog service that conflict checking
// depends on, captured at request time. Later catalog edits do not affect
// reservations already evaluated against this snapshot.
type ServiceSnapshot struct {
	ServiceID       string
	ProviderID      string
	Name            string
	DurationMinutes int // positive, validated by the catalog owner
	BufferMinutes   int // minimum gap demanded around reservations of this service
	Price           string
}

func (s ServiceSnapshot) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

func (s ServiceSnapshot) Buffer() time.Duration {
	return time.Duration(s.BufferMinutes) * time.Minute
}

type Reservation struct {
	ID         string
	ServiceID  string
	ProviderID string
	CustomerID string
	Window     TimeWindow
	Status     Status
	Service    ServiceSnapshot
	Reason     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
