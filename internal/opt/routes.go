package opt

import (
	"sort"
	"time"

	"cargonav/internal/model"
)

// DefaultPerStopCost is the detour penalty added per intermediate stop when
// pricing a candidate route. Tunable, not a correctness constant.
const DefaultPerStopCost = 500.0

// Route generation explores connections inside this layover window. The
// shipment-validity minimum stays 1h; the 12h cap only bounds the search.
const (
	genMinConnection = time.Hour
	genMaxConnection = 12 * time.Hour
)

// RouteOption prices one candidate flight sequence for ranking.
type RouteOption struct {
	Flights       []*model.Flight
	Cost          float64
	TravelMinutes int
}

func NewRouteOption(flights []*model.Flight, perStopCost float64) RouteOption {
	opt := RouteOption{Flights: model.CloneRoute(flights)}
	for _, f := range flights {
		opt.Cost += f.Cost
	}
	opt.Cost += perStopCost * float64(opt.Stops())
	if len(flights) > 0 {
		last := flights[len(flights)-1].Arrival
		first := flights[0].Departure
		opt.TravelMinutes = int(last.Sub(first) / time.Minute)
	}
	return opt
}

func (r RouteOption) Stops() int   { return len(r.Flights) - 1 }
func (r RouteOption) Direct() bool { return len(r.Flights) == 1 }

// Better implements the selection order: direct before connecting, then
// shorter travel time, then lower cost.
func (r RouteOption) Better(o RouteOption) bool {
	if r.Direct() != o.Direct() {
		return r.Direct()
	}
	if r.TravelMinutes != o.TravelMinutes {
		return r.TravelMinutes < o.TravelMinutes
	}
	return r.Cost < o.Cost
}

func sortRouteOptions(opts []RouteOption) {
	sort.SliceStable(opts, func(i, j int) bool { return opts[i].Better(opts[j]) })
}

// routeGenerator enumerates candidate routes over the day's active flights.
type routeGenerator struct {
	byOrigin    map[string][]*model.Flight
	maxStops    int
	branchLimit int
	perStopCost float64
}

func newRouteGenerator(flights []*model.Flight, maxStops, branchLimit int, perStopCost float64) *routeGenerator {
	g := &routeGenerator{
		byOrigin:    map[string][]*model.Flight{},
		maxStops:    maxStops,
		branchLimit: branchLimit,
		perStopCost: perStopCost,
	}
	for _, f := range flights {
		if !f.Active() || f.Origin == nil || f.Destination == nil {
			continue
		}
		g.byOrigin[f.Origin.Code] = append(g.byOrigin[f.Origin.Code], f)
	}
	for _, fs := range g.byOrigin {
		sort.Slice(fs, func(i, j int) bool { return fs[i].Departure.Before(fs[j].Departure) })
	}
	return g
}

// Generate returns ranked route options from origin to destination whose
// first departure is not before earliest. Bounded breadth-first walk:
// branchLimit successors per hop, maxStops intermediate airports.
func (g *routeGenerator) Generate(origin, destination string, earliest time.Time) []RouteOption {
	var out []RouteOption
	var walk func(at string, path []*model.Flight, visited map[string]bool)
	walk = func(at string, path []*model.Flight, visited map[string]bool) {
		if len(path) > 0 && at == destination {
			out = append(out, NewRouteOption(path, g.perStopCost))
			return
		}
		if len(path) > g.maxStops {
			return
		}
		branched := 0
		for _, f := range g.byOrigin[at] {
			if visited[f.Destination.Code] {
				continue
			}
			if len(path) == 0 {
				if f.Departure.Before(earliest) {
					continue
				}
			} else {
				gap := f.Departure.Sub(path[len(path)-1].Arrival)
				if gap < genMinConnection || gap > genMaxConnection {
					continue
				}
			}
			if branched >= g.branchLimit {
				break
			}
			branched++
			visited[f.Destination.Code] = true
			walk(f.Destination.Code, append(path, f), visited)
			visited[f.Destination.Code] = false
		}
	}
	walk(origin, nil, map[string]bool{origin: true})
	sortRouteOptions(out)
	return out
}
