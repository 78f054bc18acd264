package geoip

import "errors"

var (
	// ErrRemoteFetch reports that the object storage request failed.
	ErrRemoteFetch = errors.New("failed to fetch MMDB object")

	// ErrStreamCollection reports that the object body could not be read
	// in full after the request succeeded.
	ErrStreamCollection = errors.New("failed to read MMDB object body")

	// ErrDatabaseFormat reports that a buffer is not a valid MMDB image.
	ErrDatabaseFormat = errors.New("invalid MMDB data")

	// ErrDatabaseLookup reports an engine fault during a single lookup.
	// The resolver stays usable for later lookups.
	ErrDatabaseLookup = errors.New("geo data lookup failed")
)
