package vehicle

// DefaultClasses returns the built-in vehicle catalog. Base impact scores
// encode relative environmental severity; electric variants score well below
// their combustion counterparts.
func DefaultClasses() []*Class {
	return []*Class{
		{ID: "hatchback", Name: "Hatchback", Category: CategoryCar, EmissionFactor: 0.14, FuelCostPerKm: 6.5, AvgSpeedKmh: 40, BaseImpactScore: 45},
		{ID: "sedan", Name: "Sedan", Category: CategoryCar, EmissionFactor: 0.17, FuelCostPerKm: 7.5, AvgSpeedKmh: 40, BaseImpactScore: 50},
		{ID: "suv", Name: "SUV", Category: CategoryCar, EmissionFactor: 0.22, FuelCostPerKm: 9.0, AvgSpeedKmh: 38, BaseImpactScore: 60},
		{ID: "luxury-car", Name: "Luxury Car", Category: CategoryCar, EmissionFactor: 0.25, FuelCostPerKm: 11.0, AvgSpeedKmh: 42, BaseImpactScore: 65},
		{ID: "electric-car", Name: "Electric Car", Category: CategoryCar, EmissionFactor: 0.05, FuelCostPerKm: 1.5, AvgSpeedKmh: 40, BaseImpactScore: 25},
		{ID: "petrol-bike", Name: "Petrol Motorcycle", Category: CategoryBike, EmissionFactor: 0.08, FuelCostPerKm: 2.5, AvgSpeedKmh: 35, BaseImpactScore: 35},
		{ID: "electric-bike", Name: "Electric Scooter", Category: CategoryBike, EmissionFactor: 0.02, FuelCostPerKm: 0.5, AvgSpeedKmh: 30, BaseImpactScore: 15},
	}
}
