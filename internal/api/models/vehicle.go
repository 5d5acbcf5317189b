package models

// VehicleClass describes one selectable vehicle class.
type VehicleClass struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	EmissionFactor  float64 `json:"emissionFactorKgPerKm"`
	FuelCostPerKm   float64 `json:"fuelCostPerKm"`
	AvgSpeedKmh     int     `json:"avgSpeedKmh"`
	BaseImpactScore int     `json:"baseImpactScore"`
}

// VehicleClassList is the response for vehicle class listings.
type VehicleClassList struct {
	Items []VehicleClass `json:"items"`
}

// VehicleClassUpsertRequest is the admin request to create or update a
// vehicle class.
type VehicleClassUpsertRequest struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	EmissionFactor  float64 `json:"emissionFactorKgPerKm"`
	FuelCostPerKm   float64 `json:"fuelCostPerKm"`
	AvgSpeedKmh     int     `json:"avgSpeedKmh"`
	BaseImpactScore int     `json:"baseImpactScore"`
}
