package domain

import "fmt"

type Status string

const (
	Processing Status = "processing"
	Live       Status = "live"
	Failed     Status = "failed"
	Removed    Status = "removed"
)

// CanTransition encodes the bick lifecycle. The status is monotonic except
// the explicit retry edge failed -> processing; removed is terminal and only
// reachable from live (moderation).
func CanTransition(from, to Status) bool {
	switch from {
	case Processing:
		return to == Live || to == Failed
	case Live:
		return to == Removed
	case Failed:
		return to == Processing
	case Removed:
		return false
	default:
		return false
	}
}

func ValidateTransition(from, to Status) error {
	if from == to {
		return nil
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
