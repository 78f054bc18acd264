package data

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/TomasB/geoip/pkg/geoip"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/oschwald/geoip2-golang"
)

// Source describes where the database is loaded from. Exactly one of
// Path or Bucket/Key is set.
type Source struct {
	Path   string
	Bucket string
	Key    string
}

func (s Source) String() string {
	if s.Path != "" {
		return s.Path
	}
	return "s3://" + s.Bucket + "/" + s.Key
}

// probeIP is looked up once to confirm the database answers country queries.
var probeIP = net.ParseIP("81.2.69.142")

// NewS3Client builds an S3 client from the default AWS credential chain
// and region settings.
func NewS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// IsS3 reports whether the source is an S3 object.
func (s Source) IsS3() bool {
	return s.Path == ""
}

// Load loads the database described by src. client is only used for S3
// sources and may be nil otherwise.
func Load(ctx context.Context, src Source, client geoip.ObjectGetter) (*geoip.MaxMindResolver, error) {
	if src.Path != "" {
		return LoadFile(src.Path)
	}
	if client == nil {
		return nil, fmt.Errorf("no S3 client configured for %s", src)
	}
	return geoip.FromS3(ctx, client, src.Bucket, src.Key)
}

// LoadFile reads, verifies and loads the MMDB file at path.
func LoadFile(path string) (*geoip.MaxMindResolver, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read MMDB file: %w", err)
	}
	if err := Verify(buf); err != nil {
		return nil, err
	}
	return geoip.FromBuffer(buf)
}

// Verify checks that buf is a MaxMind database carrying country data.
func Verify(buf []byte) error {
	db, err := geoip2.FromBytes(buf)
	if err != nil {
		return fmt.Errorf("%w: %w", geoip.ErrDatabaseFormat, err)
	}
	defer db.Close()

	if _, err := db.Country(probeIP); err != nil {
		return fmt.Errorf("database %s has no country data: %w", db.Metadata().DatabaseType, err)
	}
	return nil
}
