package geoip

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/oschwald/maxminddb-golang"
)

// ObjectGetter is the subset of the S3 client used to fetch a database.
// *s3.Client satisfies it.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// MaxMindResolver implements Resolver using an in-memory MaxMind DB.
// The underlying reader is never mutated after load, so a single
// instance can serve any number of concurrent lookups.
type MaxMindResolver struct {
	db *maxminddb.Reader
}

// DatabaseInfo describes a loaded database.
type DatabaseInfo struct {
	Type      string    `json:"type"`
	BuildTime time.Time `json:"build_time"`
	IPVersion uint      `json:"ip_version"`
	Languages []string  `json:"languages"`
}

// FromS3 fetches the object at bucket/key and loads it as a database.
func FromS3(ctx context.Context, client ObjectGetter, bucket, key string) (*MaxMindResolver, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w s3://%s/%s: %w", ErrRemoteFetch, bucket, key, err)
	}
	defer out.Body.Close()

	buf, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w s3://%s/%s: %w", ErrStreamCollection, bucket, key, err)
	}
	return FromBuffer(buf)
}

// FromBuffer parses buf as a complete MaxMind DB image.
func FromBuffer(buf []byte) (*MaxMindResolver, error) {
	db, err := maxminddb.FromBytes(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseFormat, err)
	}
	return &MaxMindResolver{db: db}, nil
}

// FromFile reads the MMDB file at path into memory and loads it.
func FromFile(path string) (*MaxMindResolver, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read MMDB file: %w", err)
	}
	return FromBuffer(buf)
}

// Info returns the metadata of the loaded database.
func (r *MaxMindResolver) Info() DatabaseInfo {
	md := r.db.Metadata
	return DatabaseInfo{
		Type:      md.DatabaseType,
		BuildTime: time.Unix(int64(md.BuildEpoch), 0).UTC(),
		IPVersion: md.IPVersion,
		Languages: md.Languages,
	}
}

// LookupGeoData returns the normalized city-level data for ip.
func (r *MaxMindResolver) LookupGeoData(ip net.IP) (GeoData, error) {
	var record cityRecord
	if err := r.db.Lookup(ip, &record); err != nil {
		return GeoData{}, fmt.Errorf("%w: %w", ErrDatabaseLookup, err)
	}
	return record.normalize(), nil
}
