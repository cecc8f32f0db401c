package model

// Continent groups airports for deadline derivation.
type Continent string

const (
	ContinentSouthAmerica Continent = "SAM"
	ContinentEurope       Continent = "EUR"
	ContinentAsia         Continent = "ASI"
	ContinentNorthAmerica Continent = "NAM"
	ContinentAfrica       Continent = "AFR"
	ContinentOceania      Continent = "OCE"
)

type Country struct {
	Name      string    `json:"name"`
	Continent Continent `json:"continent"`
}

// Airport is immutable after load. Storage capacity is in product units;
// UTCOffset is whole hours east of UTC.
type Airport struct {
	Code            string  `json:"code"`
	City            string  `json:"city"`
	Country         Country `json:"country"`
	StorageCapacity int     `json:"storageCapacity"`
	UTCOffset       int     `json:"utcOffset"`
	Lat             float64 `json:"lat"`
	Lon             float64 `json:"lon"`
}

func (a *Airport) ContinentCode() Continent {
	if a == nil {
		return ""
	}
	return a.Country.Continent
}

// SameContinent reports whether both airports are known and share a continent.
func SameContinent(a, b *Airport) bool {
	return a != nil && b != nil && a.Country.Continent == b.Country.Continent
}
