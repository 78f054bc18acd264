// Package mmdbtest builds small in-memory MaxMind databases for tests.
package mmdbtest

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/maxmind/mmdbwriter"
	"github.com/maxmind/mmdbwriter/mmdbtype"
)

// Build returns a GeoIP2-City database holding the given CIDR-to-record
// entries.
func Build(t testing.TB, entries map[string]mmdbtype.Map) []byte {
	t.Helper()
	return BuildType(t, "GeoIP2-City", entries)
}

// BuildType is Build with an explicit database type.
func BuildType(t testing.TB, dbType string, entries map[string]mmdbtype.Map) []byte {
	t.Helper()

	w, err := mmdbwriter.New(mmdbwriter.Options{
		DatabaseType:            dbType,
		RecordSize:              24,
		IncludeReservedNetworks: true,
		Languages:               []string{"en"},
	})
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}

	for cidr, record := range entries {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			t.Fatalf("failed to parse CIDR %s: %v", cidr, err)
		}
		if err := w.Insert(network, record); err != nil {
			t.Fatalf("failed to insert %s: %v", cidr, err)
		}
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatalf("failed to write database: %v", err)
	}
	return buf.Bytes()
}

// WriteFile writes buf into dir under name and returns the full path.
func WriteFile(t testing.TB, dir, name string, buf []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf, 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// Country returns a record carrying only a country ISO code.
func Country(iso string) mmdbtype.Map {
	return mmdbtype.Map{"country": mmdbtype.Map{"iso_code": mmdbtype.String(iso)}}
}
