package lux

// Game constants for Lux AI season 1.
const (
	DayLength   = 30
	NightLength = 10
	CycleLength = DayLength + NightLength

	WorkerCapacity = 100
	CartCapacity   = 2000

	CityBuildCost = 100

	CoalResearchPoints    = 50
	UraniumResearchPoints = 200

	WoodFuelRate    = 1
	CoalFuelRate    = 10
	UraniumFuelRate = 40
)
