package outbox

import (
	"encoding/json"
	"time"

	"github.com/bookline/bookline/services/booking-service/internal/model"
)

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType (event per topic).
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// TopicFor maps a reservation event to its versioned topic name.
func TopicFor(event model.EventType) string {
	return "booking.reservation." + string(event) + ".v1"
}

type reservationPayload struct {
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
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewReservationEvent builds the outbox envelope for one reservation
// mutation.
func NewReservationEvent(res model.Reservation, event model.EventType) (Event, error) {
	payload, err := json.Marshal(reservationPayload{
		ReservationID: res.ID,
		ServiceID:     res.ServiceID,
		ServiceName:   res.Service.Name,
		ProviderID:    res.ProviderID,
		CustomerID:    res.CustomerID,
		StartTime:     res.Window.Start,
		EndTime:       res.Window.End,
		Status:        string(res.Status),
		Reason:        res.Reason,
		Event:         string(event),
		OccurredAt:    res.UpdatedAt,
	})
	if err != nil {
		return Event{}, err
	}
	return Event{
		AggregateType: "reservation",
		AggregateID:   res.ID,
		EventType:     TopicFor(event),
		Payload:       payload,
	}, nil
}
