package models

import "strings"

// Coordinate is a WGS84 point in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Position is the last reported point of a vehicle.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     float64 `json:"speed"`
}

func (p Position) Coordinate() Coordinate {
	return Coordinate{Latitude: p.Latitude, Longitude: p.Longitude}
}

// Location identifies a pricing zone.
type Location struct {
	Country      string `json:"country"`
	Province     string `json:"province"`
	Municipality string `json:"municipality"`
}

// Key is the lower cased country_province_municipality lookup key.
func (l Location) Key() string {
	return strings.ToLower(l.Country + "_" + l.Province + "_" + l.Municipality)
}

func (l Location) IsZero() bool {
	return l.Country == "" && l.Province == "" && l.Municipality == ""
}
