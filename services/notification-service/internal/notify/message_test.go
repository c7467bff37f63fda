package notify

import (
	"strings"
	"testing"
	"time"
)

func event(kind, status string) ReservationEvent {
	return ReservationEvent{
		ReservationID: "r-1",
		ServiceName:   "Dental Checkup",
		ProviderID:    "p-1",
		CustomerID:    "c-1",
		StartTime:     time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC),
		EndTime:       time.Date(2026, 9, 2, 10, 30, 0, 0, time.UTC),
		Status:        status,
		Event:         kind,
	}
}

func TestForCustomer_CoversAllEvents(t *testing.T) {
	tests := []struct {
		kind    string
		status  string
		subject string
	}{
		{"booked", "pending", "Booking received"},
		{"updated", "confirmed", "Booking confirmed"},
		{"updated", "rejected", "Booking declined"},
		{"updated", "pending", "Booking updated"},
		{"cancelled", "cancelled", "Booking cancelled"},
		{"deleted", "cancelled", "Booking removed"},
	}
	for _, tc := range tests {
		t.Run(tc.kind+"/"+tc.status, func(t *testing.T) {
			msg, ok := ForCustomer(event(tc.kind, tc.status))
			if !ok {
				t.Fatal("no message produced")
			}
			if !strings.HasPrefix(msg.Subject, tc.subject) {
				t.Errorf("subject = %q, want prefix %q", msg.Subject, tc.subject)
			}
			if !strings.Contains(msg.Body, "Dental Checkup") {
				t.Errorf("body %q missing service name", msg.Body)
			}
		})
	}
}

func TestForCustomer_UnknownEventProducesNothing(t *testing.T) {
	if _, ok := ForCustomer(event("mystery", "pending")); ok {
		t.Error("unknown event should produce no message")
	}
}

func TestForProvider_ConfirmationsAreSilent(t *testing.T) {
	// The provider triggered the confirmation; notifying them back would
	// just be noise.
	if _, ok := ForProvider(event("updated", "confirmed")); ok {
		t.Error("provider should not be notified of their own status change")
	}
	if msg, ok := ForProvider(event("updated", "pending")); !ok || !strings.Contains(msg.Subject, "rescheduled") {
		t.Errorf("reschedule should notify provider, got %+v ok=%v", msg, ok)
	}
}

func TestCancelledIncludesReason(t *testing.T) {
	e := event("cancelled", "cancelled")
	e.Reason = "flight delayed"
	msg, ok := ForCustomer(e)
	if !ok || !strings.Contains(msg.Body, "flight delayed") {
		t.Errorf("body %q should carry the cancellation reason", msg.Body)
	}
}

func TestReminder(t *testing.T) {
	msg := Reminder("Dental Checkup", time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC))
	if !strings.Contains(msg.Subject, "Reminder") {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "02 Sep 2026 10:00") {
		t.Errorf("body %q missing start time", msg.Body)
	}
	if !strings.Contains(msg.Body, "Dental Checkup") {
		t.Errorf("body %q missing service name", msg.Body)
	}
}
