package orders

import "fmt"

type Status string

const (
	StatusPending   Status = "pending"
	StatusPacking   Status = "packing"
	StatusShipped   Status = "shipped"
	StatusCompleted Status = "completed"
)

// Single-step transitions only. completed is terminal.
var nextStatus = map[Status]Status{
	StatusPending: StatusPacking,
	StatusPacking: StatusShipped,
	StatusShipped: StatusCompleted,
}

func CanTransition(from, to Status) bool {
	return nextStatus[from] == to && to != ""
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusPacking, StatusShipped, StatusCompleted:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}
