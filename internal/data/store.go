// Package data loads the geo database the service answers from and keeps
// the currently active resolver.
package data

import (
	"errors"
	"net"
	"sync/atomic"

	"github.com/TomasB/geoip/pkg/geoip"
)

// ErrNotReady is returned by Store lookups before a database is loaded.
var ErrNotReady = errors.New("geo database not loaded")

// Store holds the active resolver and implements geoip.Resolver by
// delegating to it. The resolver can be replaced while lookups run.
type Store struct {
	current atomic.Pointer[entry]
}

type entry struct {
	resolver geoip.Resolver
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Swap makes r the active resolver.
func (s *Store) Swap(r geoip.Resolver) {
	s.current.Store(&entry{resolver: r})
}

// Ready returns nil once a resolver is loaded.
func (s *Store) Ready() error {
	if s.current.Load() == nil {
		return ErrNotReady
	}
	return nil
}

// Info returns the metadata of the active database, if the active
// resolver is database-backed.
func (s *Store) Info() (geoip.DatabaseInfo, bool) {
	e := s.current.Load()
	if e == nil {
		return geoip.DatabaseInfo{}, false
	}
	db, ok := e.resolver.(interface{ Info() geoip.DatabaseInfo })
	if !ok {
		return geoip.DatabaseInfo{}, false
	}
	return db.Info(), true
}

// LookupGeoData resolves ip with the active resolver.
func (s *Store) LookupGeoData(ip net.IP) (geoip.GeoData, error) {
	e := s.current.Load()
	if e == nil {
		return geoip.GeoData{}, ErrNotReady
	}
	return e.resolver.LookupGeoData(ip)
}
