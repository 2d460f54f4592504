package orders

const (
	TopicOrderCreated       = "orders.created"
	TopicOrderCancelled     = "orders.cancelled"
	TopicOrderStatusChanged = "orders.status-changed"
)

// Partition key = order_id so all events of one order keep their order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
