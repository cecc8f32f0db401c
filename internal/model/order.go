package model

import "time"

const (
	SameContinentMaxHours  = 48
	CrossContinentMaxHours = 72
)

// Order is one customer request for TotalQuantity units from Origin to
// Destination. MaxDeliveryHours is fixed at construction; the deadline is
// derived on demand, never stored.
type Order struct {
	ID               int       `json:"id"`
	TotalQuantity    int       `json:"totalQuantity"`
	Origin           *Airport  `json:"origin"`
	Destination      *Airport  `json:"destination"`
	OrderTime        time.Time `json:"orderTime"`
	MaxDeliveryHours int       `json:"maxDeliveryHours"`
}

// NewOrder derives the delivery window: 48h when origin and destination
// share a continent, 72h otherwise.
func NewOrder(id, quantity int, origin, destination *Airport, orderTime time.Time) *Order {
	hours := CrossContinentMaxHours
	if SameContinent(origin, destination) {
		hours = SameContinentMaxHours
	}
	return &Order{
		ID:               id,
		TotalQuantity:    quantity,
		Origin:           origin,
		Destination:      destination,
		OrderTime:        orderTime,
		MaxDeliveryHours: hours,
	}
}

// Deadline is anchored to the destination's local clock: the order time is
// shifted into the destination offset, the delivery window added there, and
// the result shifted back to UTC. Without a destination the calculation
// degrades to plain UTC arithmetic.
func (o *Order) Deadline() time.Time {
	if o.Destination == nil {
		return o.OrderTime.Add(time.Duration(o.MaxDeliveryHours) * time.Hour)
	}
	offset := time.Duration(o.Destination.UTCOffset) * time.Hour
	local := o.OrderTime.Add(offset)
	localDeadline := local.Add(time.Duration(o.MaxDeliveryHours) * time.Hour)
	return localDeadline.Add(-offset)
}
