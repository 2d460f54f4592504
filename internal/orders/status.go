package orders

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// ReservesStock reports whether an order in this status still holds a stock
// reservation that cancellation must give back. Shipped and delivered orders
// have left the warehouse.
func (s Status) ReservesStock() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing:
		return true
	}
	return false
}

// CanTransition: any non-cancelled status may move to any non-cancelled
// status; CANCELLED is terminal and only reachable from non-terminal states.
func CanTransition(from, to Status) bool {
	if from == StatusCancelled {
		return false
	}
	return to.Valid()
}
