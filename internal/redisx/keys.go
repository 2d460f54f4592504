package redisx

import "time"

const (
	// Cached order snapshot: order:{order_id} -> JSON order
	KeyOrder = "order:%s"
)

var TTLOrder = 5 * time.Minute
