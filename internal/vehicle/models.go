// Package vehicle provides the vehicle class reference table.
package vehicle

import "errors"

// Repository errors.
var (
	ErrVehicleNotFound = errors.New("vehicle class not found")
)

// Category is a transport mode category.
type Category string

const (
	CategoryCar     Category = "car"
	CategoryBike    Category = "bike"
	CategoryBus     Category = "bus"
	CategoryMetro   Category = "metro"
	CategoryAuto    Category = "auto"
	CategoryWalking Category = "walking"
)

// ParseCategory validates a category string.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryCar, CategoryBike, CategoryBus, CategoryMetro, CategoryAuto, CategoryWalking:
		return Category(s), true
	default:
		return "", false
	}
}

// IsPrivate reports whether the category requires a specific vehicle class.
func (c Category) IsPrivate() bool {
	return c == CategoryCar || c == CategoryBike
}

// Class represents one selectable vehicle configuration.
//
// BaseImpactScore already reflects the relative environmental severity of
// the class (electric and active modes score lower than combustion ones);
// the scoring engine trusts the stored value and never re-derives it.
type Class struct {
	// ID is the unique class identifier (slug, e.g. "electric-car").
	ID string

	// Name is the display name.
	Name string

	// Category is the transport mode the class belongs to.
	Category Category

	// EmissionFactor is kg CO2 emitted per km.
	EmissionFactor float64

	// FuelCostPerKm is the running cost per km in currency units.
	FuelCostPerKm float64

	// AvgSpeedKmh is the assumed average speed in km/h.
	AvgSpeedKmh int

	// BaseImpactScore is the class's inherent impact, 0-100.
	BaseImpactScore int
}
