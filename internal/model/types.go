package model

// Wire-level request/response types for the API surface. Flights and orders
// reference airports by code on the wire; the dataset package resolves them
// into shared object graphs.

type AirportIn struct {
	Code            string  `json:"code"`
	City            string  `json:"city,omitempty"`
	Country         string  `json:"country,omitempty"`
	Continent       string  `json:"continent"`
	StorageCapacity int     `json:"storageCapacity"`
	UTCOffset       int     `json:"utcOffset"`
	Lat             float64 `json:"lat,omitempty"`
	Lon             float64 `json:"lon,omitempty"`
}

type FlightIn struct {
	Code        string  `json:"code"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Departure   string  `json:"departure"` // RFC3339
	Arrival     string  `json:"arrival"`   // RFC3339
	Capacity    int     `json:"capacity"`
	Cost        float64 `json:"cost,omitempty"`
	Status      string  `json:"status,omitempty"`
}

type OrderInput struct {
	ID          int    `json:"id"`
	Quantity    int    `json:"quantity"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	OrderTime   string `json:"orderTime"` // RFC3339
}

type DatasetIn struct {
	Airports []AirportIn  `json:"airports"`
	Flights  []FlightIn   `json:"flights"`
	Orders   []OrderInput `json:"orders"`
}

type OptimizeRequest struct {
	Dataset       DatasetIn `json:"dataset"`
	Seed          int64     `json:"seed,omitempty"`
	MaxIterations int       `json:"maxIterations,omitempty"`
	Patience      int       `json:"patience,omitempty"`
	TabuTenure    int       `json:"tabuTenure,omitempty"`
	// Construction scoring weights: utilization, deadline, departure.
	ScoreWeights []float64 `json:"scoreWeights,omitempty"`
	PerStopCost  float64   `json:"perStopCost,omitempty"`
}

type SimulateRequest struct {
	Dataset    DatasetIn `json:"dataset"`
	Scenario   string    `json:"scenario,omitempty"` // daily, weekly, collapse
	Seed       int64     `json:"seed,omitempty"`
	CancelProb float64   `json:"cancelProb,omitempty"`
	StartDate  string    `json:"startDate,omitempty"` // RFC3339, defaults to first departure
}

type ShipmentOut struct {
	ID        int     `json:"id"`
	OrderID   int     `json:"orderId"`
	Quantity  int     `json:"quantity"`
	Route     string  `json:"route"`
	Stops     int     `json:"stops"`
	Hours     float64 `json:"hours,omitempty"`
	OnTime    bool    `json:"onTime"`
}

type SolutionOut struct {
	Shipments        []ShipmentOut `json:"shipments"`
	RouteCost        float64       `json:"routeCost"`
	IncompleteOrders []int         `json:"incompleteOrders,omitempty"`
}

type DayResultOut struct {
	Day              int     `json:"day"`
	Flights          int     `json:"flights"`
	Cancelled        int     `json:"cancelled"`
	Orders           int     `json:"orders"`
	Delivered        int     `json:"delivered"`
	AvgDeliveryHours float64 `json:"avgDeliveryHours"`
	Skipped          bool    `json:"skipped,omitempty"`
}

type WeeklySummaryOut struct {
	Delivered        int            `json:"delivered"`
	AvgDeliveryHours float64        `json:"avgDeliveryHours"`
	Backlog          map[int]int    `json:"backlog"`
	Days             []DayResultOut `json:"days"`
}
