package geometry

import (
	"math"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
)

const EarthRadiusKm = 6371.0

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func radiansToDegrees(radians float64) float64 {
	return radians * 180 / math.Pi
}

// HaversineDistance returns the great circle distance in kilometres.
func HaversineDistance(from, to models.Coordinate) float64 {
	lat1 := degreesToRadians(from.Latitude)
	lat2 := degreesToRadians(to.Latitude)
	deltaLat := lat2 - lat1
	deltaLon := degreesToRadians(to.Longitude - from.Longitude)

	a := math.Pow(math.Sin(deltaLat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(deltaLon/2), 2)

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Bearing returns the initial great circle bearing in degrees within [0, 360).
// Identical points give 0.
func Bearing(from, to models.Coordinate) float64 {
	if from == to {
		return 0
	}

	lat1 := degreesToRadians(from.Latitude)
	lat2 := degreesToRadians(to.Latitude)
	deltaLon := degreesToRadians(to.Longitude - from.Longitude)

	y := math.Sin(deltaLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(deltaLon)

	deg := math.Mod(radiansToDegrees(math.Atan2(y, x))+360, 360)
	if deg >= 360 {
		deg = 0
	}
	return deg
}
