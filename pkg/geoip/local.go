package geoip

import "net"

// LocalResolver maps addresses to GeoData with a caller-supplied function.
// It performs no I/O and is meant for tests and offline environments.
type LocalResolver struct {
	fn func(net.IP) GeoData
}

// NewLocalResolver returns a resolver backed by fn. fn must be safe for
// concurrent use.
func NewLocalResolver(fn func(net.IP) GeoData) LocalResolver {
	return LocalResolver{fn: fn}
}

// Lookup returns the GeoData for ip. It cannot fail.
func (r LocalResolver) Lookup(ip net.IP) GeoData {
	return r.fn(ip)
}

// LookupGeoData implements Resolver. The returned error is always nil.
func (r LocalResolver) LookupGeoData(ip net.IP) (GeoData, error) {
	return r.Lookup(ip), nil
}
