package model

import "math"

// Flight cost derivation: great-circle distance plus a base charge and a
// capacity factor. Applied at load time when a dataset carries no explicit
// per-flight cost.
const (
	flightBaseCost    = 200.0
	costPerKm         = 0.35
	costPerSeatUnit   = 0.5
)

// HaversineKm is the great-circle distance between two coordinates.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const r = 6371.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return r * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// DeriveFlightCost prices a flight from its endpoints and capacity.
func DeriveFlightCost(origin, destination *Airport, capacity int) float64 {
	if origin == nil || destination == nil {
		return flightBaseCost
	}
	km := HaversineKm(origin.Lat, origin.Lon, destination.Lat, destination.Lon)
	return flightBaseCost + km*costPerKm + float64(capacity)*costPerSeatUnit
}
