package domain

import "time"

// OrderRef is the slice of an external order the engine needs: an
// opaque key and the rental window. The engine never navigates a live
// order graph; collaborators pass these plain records by value.
type OrderRef struct {
	ID          string
	WindowStart *time.Time
	WindowEnd   *time.Time
}

// HasWindow reports whether both window bounds are set.
func (o OrderRef) HasWindow() bool {
	return o.WindowStart != nil && o.WindowEnd != nil
}

// OrderLine is one line item of an external order: a device model and
// how many units of it were requested. A line may arrive without a
// resolved model while the order is still being filled in.
type OrderLine struct {
	ID            string
	DeviceModelID string
	Quantity      int
}
