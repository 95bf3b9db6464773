package redisx

import "time"

const (
	// Cache of an order's current status: order_status:{order_id}
	KeyOrderStatus = "order_status:%d"

	// Cart hash per cart key: cart:{key}, fields "productID|size" -> qty
	KeyCart = "cart:%s"

	// Dedup for event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLCart        = 14 * 24 * time.Hour
	TTLDedup       = 48 * time.Hour
)
