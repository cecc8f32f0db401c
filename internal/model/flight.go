package model

import "time"

type FlightStatus string

const (
	FlightScheduled FlightStatus = "SCHEDULED"
	FlightDelayed   FlightStatus = "DELAYED"
	FlightCancelled FlightStatus = "CANCELLED"
	FlightCompleted FlightStatus = "COMPLETED"
)

// Flight timestamps are naive local times on the simulation's single
// reference clock, stored as UTC instants. Arrival is always >= departure;
// overnight flights are rolled to the next day at load time.
type Flight struct {
	Code        string       `json:"code"`
	Origin      *Airport     `json:"origin"`
	Destination *Airport     `json:"destination"`
	Departure   time.Time    `json:"departure"`
	Arrival     time.Time    `json:"arrival"`
	Capacity    int          `json:"capacity"`
	Cost        float64      `json:"cost"`
	Status      FlightStatus `json:"status"`
}

// Active reports whether the flight can still carry cargo.
func (f *Flight) Active() bool {
	return f.Status != FlightCancelled && f.Status != FlightCompleted
}

func (f *Flight) DurationMinutes() int {
	return int(f.Arrival.Sub(f.Departure) / time.Minute)
}
