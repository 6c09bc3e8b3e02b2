package order

import "fmt"

// Order statuses. These six labels are the entire vocabulary; anything else is
// rejected at the boundary before any mutation.
const (
	StatusPendingPayment  = "Pending_Payment"
	StatusWaitingApproval = "Waiting_Approval"
	StatusProcessing      = "Processing"
	StatusShipped         = "Shipped"
	StatusDelivered       = "Delivered"
	StatusCancelled       = "Cancelled"
)

// predecessors lists the legal prior states per target. Cancelled is handled
// separately: it is reachable from any non-terminal state.
var predecessors = map[string][]string{
	StatusWaitingApproval: {StatusPendingPayment},
	StatusProcessing:      {StatusWaitingApproval},
	StatusShipped:         {StatusProcessing},
	StatusDelivered:       {StatusShipped},
}

// IsValidStatus reports whether label is one of the six recognized statuses.
// Checked case-sensitively.
func IsValidStatus(label string) bool {
	switch label {
	case StatusPendingPayment, StatusWaitingApproval, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition may leave this state.
func IsTerminal(status string) bool {
	return status == StatusDelivered || status == StatusCancelled
}

// ValidateTransition enforces monotonic forward movement with a universal
// escape to Cancelled from any non-terminal state.
func ValidateTransition(current, target string) error {
	if IsTerminal(current) {
		return fmt.Errorf("%w: order is already %s", ErrIllegalTransition, current)
	}
	if target == StatusCancelled {
		return nil
	}
	for _, prev := range predecessors[target] {
		if prev == current {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, target)
}
