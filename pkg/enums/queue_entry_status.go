package enums

import "fmt"

// QueueEntryStatus is the state of an order-queue entry. Entries move from
// pending to assigned exactly once and are never deleted.
type QueueEntryStatus string

const (
	QueueEntryStatusPending  QueueEntryStatus = "pending"
	QueueEntryStatusAssigned QueueEntryStatus = "assigned"
)

var validQueueEntryStatuses = []QueueEntryStatus{
	QueueEntryStatusPending,
	QueueEntryStatusAssigned,
}

// IsValid reports whether the value matches the canonical queue entry status enum.
func (q QueueEntryStatus) IsValid() bool {
	for _, candidate := range validQueueEntryStatuses {
		if candidate == q {
			return true
		}
	}
	return false
}

// ParseQueueEntryStatus converts the raw string to QueueEntryStatus.
func ParseQueueEntryStatus(value string) (QueueEntryStatus, error) {
	for _, candidate := range validQueueEntryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid queue entry status %q", value)
}
