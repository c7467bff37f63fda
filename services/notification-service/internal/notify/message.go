// Package notify composes the customer- and provider-facing messages for
// reservation events. Pure text assembly; senders and storage live
// elsewhere.
package notify

import (
	"fmt"
	"time"
)

// ReservationEvent mirrors the payload booking-service writes to its
// outbox.
type ReservationEvent struct {
	ReservationID string    `json:"reservation_id"`
	ServiceID     string    `json:"service_id"`
	ServiceName   string    `json:"service_name"`
	ProviderID    string    `json:"provider_id"`
	CustomerID    string    `json:"customer_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason,omitempty"`
	Event         string    `json:"event"`
}

type Message struct {
	Subject string
	Body    string
}

func (e ReservationEvent) when() string {
	return e.StartTime.UTC().Format("Mon, 02 Jan 2006 15:04 MST")
}

// ForCustomer builds the customer-facing message for an event, or false
// when the event type warrants no customer notification.
func ForCustomer(e ReservationEvent) (Message, bool) {
	switch e.Event {
	case "booked":
		return Message{
			Subject: "Booking received: " + e.ServiceName,
			Body: fmt.Sprintf("Your booking for %s on %s was received and is awaiting confirmation.",
				e.ServiceName, e.when()),
		}, true
	case "updated":
		if e.Status == "confirmed" {
			return Message{
				Subject: "Booking confirmed: " + e.ServiceName,
				Body:    fmt.Sprintf("Your booking for %s on %s is confirmed.", e.ServiceName, e.when()),
			}, true
		}
		if e.Status == "rejected" {
			return Message{
				Subject: "Booking declined: " + e.ServiceName,
				Body:    fmt.Sprintf("Unfortunately your booking for %s on %s was declined.", e.ServiceName, e.when()),
			}, true
		}
		return Message{
			Subject: "Booking updated: " + e.ServiceName,
			Body:    fmt.Sprintf("Your booking for %s was moved to %s and is awaiting confirmation.", e.ServiceName, e.when()),
		}, true
	case "cancelled":
		body := fmt.Sprintf("Your booking for %s on %s was cancelled.", e.ServiceName, e.when())
		if e.Reason != "" {
			body += " Reason: " + e.Reason
		}
		return Message{Subject: "Booking cancelled: " + e.ServiceName, Body: body}, true
	case "deleted":
		return Message{
			Subject: "Booking removed: " + e.ServiceName,
			Body:    fmt.Sprintf("Your booking for %s on %s was removed by an administrator.", e.ServiceName, e.when()),
		}, true
	}
	return Message{}, false
}

// ForProvider builds the provider-facing message for an event.
func ForProvider(e ReservationEvent) (Message, bool) {
	switch e.Event {
	case "booked":
		return Message{
			Subject: "New booking request: " + e.ServiceName,
			Body:    fmt.Sprintf("A customer requested %s on %s. Confirm or decline it.", e.ServiceName, e.when()),
		}, true
	case "updated":
		if e.Status == "pending" {
			return Message{
				Subject: "Booking rescheduled: " + e.ServiceName,
				Body:    fmt.Sprintf("A booking for %s was moved to %s and needs re-confirmation.", e.ServiceName, e.when()),
			}, true
		}
		return Message{}, false
	case "cancelled":
		body := fmt.Sprintf("The booking for %s on %s was cancelled.", e.ServiceName, e.when())
		if e.Reason != "" {
			body += " Reason: " + e.Reason
		}
		return Message{Subject: "Booking cancelled: " + e.ServiceName, Body: body}, true
	case "deleted":
		return Message{
			Subject: "Booking removed: " + e.ServiceName,
			Body:    fmt.Sprintf("The booking for %s on %s was removed by an administrator.", e.ServiceName, e.when()),
		}, true
	}
	return Message{}, false
}

// Reminder builds the day-before reminder sent to the customer.
func Reminder(serviceName string, start time.Time) Message {
	return Message{
		Subject: "Reminder: " + serviceName + " tomorrow",
		Body: fmt.Sprintf("This is a reminder for your upcoming %s on %s.",
			serviceName, start.UTC().Format("Mon, 02 Jan 2006 15:04 MST")),
	}
}
