package shared

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)

// EventType names a lending fact published through the outbox
type EventType string

const (
	EventTypeItemBorrowed       EventType = "transaction.borrowed"
	EventTypeItemReturned       EventType = "transaction.returned"
	EventTypeTransactionOverdue EventType = "transaction.overdue"
	EventTypeFineAssessed       EventType = "fine.assessed"
	EventTypeFinePaid           EventType = "fine.paid"
	EventTypeMemberSuspended    EventType = "member.suspended"
	EventTypeMemberReactivated  EventType = "member.reactivated"
)

// IsValid reports whether t is one of the known lending event types
func (t EventType) IsValid() bool {
	switch t {
	case EventTypeItemBorrowed, EventTypeItemReturned, EventTypeTransactionOverdue,
		EventTypeFineAssessed, EventTypeFinePaid, EventTypeMemberSuspended, EventTypeMemberReactivated:
		return true
	}
	return false
}
