package opt

import "cargonav/internal/model"

// StorageLedger tracks ground-storage occupancy per airport as two buckets:
// reserved (tentatively held during construction) and confirmed (committed
// units on the ground). It is pure bookkeeping keyed by airport code; it
// never re-reads airport state beyond the capacity passed in each call.
//
// A ledger belongs to exactly one optimizer run. Reset between runs.
type StorageLedger struct {
	reserved  map[string]int
	confirmed map[string]int
}

func NewStorageLedger() *StorageLedger {
	return &StorageLedger{reserved: map[string]int{}, confirmed: map[string]int{}}
}

// HasAvailable reports whether qty more units fit under the airport's
// storage capacity.
func (l *StorageLedger) HasAvailable(a *model.Airport, qty int) bool {
	if a == nil {
		return false
	}
	return l.reserved[a.Code]+l.confirmed[a.Code]+qty <= a.StorageCapacity
}

// Reserve re-checks availability and holds qty units. No partial
// reservation: it either takes all of qty or nothing.
func (l *StorageLedger) Reserve(a *model.Airport, qty int) bool {
	if !l.HasAvailable(a, qty) {
		return false
	}
	l.reserved[a.Code] += qty
	return true
}

// ReleaseReserved gives back a reservation, floored at zero.
func (l *StorageLedger) ReleaseReserved(a *model.Airport, qty int) {
	if a == nil {
		return
	}
	l.reserved[a.Code] -= qty
	if l.reserved[a.Code] < 0 {
		l.reserved[a.Code] = 0
	}
}

// ConfirmOccupancy moves qty units from reserved to confirmed.
func (l *StorageLedger) ConfirmOccupancy(a *model.Airport, qty int) {
	if a == nil {
		return
	}
	l.ReleaseReserved(a, qty)
	l.confirmed[a.Code] += qty
}

// RemoveFromOccupancy clears departed units from confirmed storage,
// floored at zero.
func (l *StorageLedger) RemoveFromOccupancy(a *model.Airport, qty int) {
	if a == nil {
		return
	}
	l.confirmed[a.Code] -= qty
	if l.confirmed[a.Code] < 0 {
		l.confirmed[a.Code] = 0
	}
}

// Occupied is the total held units, reserved plus confirmed.
func (l *StorageLedger) Occupied(code string) int {
	return l.reserved[code] + l.confirmed[code]
}

// Available is the remaining storage headroom at an airport.
func (l *StorageLedger) Available(a *model.Airport) int {
	if a == nil {
		return 0
	}
	free := a.StorageCapacity - l.Occupied(a.Code)
	if free < 0 {
		free = 0
	}
	return free
}

// Utilization is occupied over capacity, in [0,1] for consistent ledgers.
func (l *StorageLedger) Utilization(a *model.Airport) float64 {
	if a == nil || a.StorageCapacity == 0 {
		return 0
	}
	return float64(l.Occupied(a.Code)) / float64(a.StorageCapacity)
}

// Reset clears both buckets so no state leaks across runs.
func (l *StorageLedger) Reset() {
	l.reserved = map[string]int{}
	l.confirmed = map[string]int{}
}
