package mapview

import "fmt"

type MarkerID int

type Icon int

const (
	IconDefault Icon = iota
	IconMatch
)

func (i Icon) String() string {
	if i == IconMatch {
		return "match"
	}
	return "default"
}

type LatLng struct {
	Lat float64
	Lng float64
}

func (p LatLng) String() string {
	return fmt.Sprintf("%.5f,%.5f", p.Lat, p.Lng)
}

func (p LatLng) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

type Marker struct {
	Position LatLng
	Icon     Icon
	Title    string
}

type Popup struct {
	Title string
	Body  string
}

// Surface is the map capability the presenter draws on. Implementations
// must not hold internal locks while running an activation handler.
type Surface interface {
	Clear()
	PlaceMarker(m Marker) (MarkerID, error)
	OnActivate(id MarkerID, fn func())
	OpenPopup(id MarkerID, p Popup)
}
