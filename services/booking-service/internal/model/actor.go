package model

type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

// Actor is the authenticated principal performing an operation, as stamped
// by the gateway.
type Actor struct {
	ID   string
	Role Role
}

// EventType enumerates the domain events emitted to the notification
// collaborator. Every successful mutation emits exactly one.
type EventType string

const (
	EventBooked    EventType = "booked"
	EventUpdated   EventType = "updated"
	EventCancelled EventType = "cancelled"
	EventDeleted   EventType = "deleted"
)
