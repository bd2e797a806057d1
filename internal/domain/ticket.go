package domain

import "time"

// TicketStatus enumerates lifecycle states for support tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
)

// TicketPriority enumerates submitter-declared urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// TicketStatuses lists the canonical status values in lifecycle order.
var TicketStatuses = []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved}

// ValidTicketStatus reports whether s is a canonical status value.
func ValidTicketStatus(s TicketStatus) bool {
	for _, candidate := range TicketStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// ValidTicketPriority reports whether p is a known priority.
func ValidTicketPriority(p TicketPriority) bool {
	return p == TicketPriorityLow || p == TicketPriorityMedium || p == TicketPriorityHigh
}

// Ticket is the aggregate for helpdesk requests. TicketID is the short
// human-readable identifier exposed to submitters and is immutable once
// created; ID is the database key.
type Ticket struct {
	ID        string
	TicketID  string
	Title     string
	Category  string
	Message   string
	Priority  TicketPriority
	Email     string
	ImageURL  *string
	Status    TicketStatus
	CreatedAt time.Time
}
