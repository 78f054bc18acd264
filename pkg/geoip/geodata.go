// Package geoip resolves IP addresses to continent, country, subdivision
// and city metadata behind a single Resolver interface.
package geoip

import "net"

// GeoData is the normalized location of an IP address. Every field is
// independently optional: a nil pointer or nil slice means the database
// had no value for it.
type GeoData struct {
	Continent *string `json:"continent"`
	Country   *string `json:"country"`
	// Region lists subdivision ISO codes from outermost to innermost.
	// It is nil when the record has no subdivisions and non-nil (possibly
	// empty) when subdivisions exist but none carry a code.
	Region []string `json:"region"`
	City   *string  `json:"city"`
}

// Resolver defines the interface for IP-to-location lookups.
type Resolver interface {
	// LookupGeoData returns the location data for the given IP address.
	// An address with no data is not an error; it yields an empty GeoData.
	LookupGeoData(ip net.IP) (GeoData, error)
}
