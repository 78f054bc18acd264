package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/TomasB/geoip/internal/config"
	"github.com/TomasB/geoip/internal/data"
	"github.com/TomasB/geoip/pkg/geoip"
	geoipv1 "github.com/TomasB/geoip/pkg/geoip/v1"
	"github.com/urfave/cli/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// result is one line of lookup output.
type result struct {
	IP    string         `json:"ip"`
	Geo   *geoip.GeoData `json:"geo,omitempty"`
	Error string         `json:"error,omitempty"`
}

var sourceFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "db",
		Aliases: []string{"d"},
		Usage:   "Path to a MaxMind City database",
		EnvVars: []string{"MMDB_PATH"},
	},
	&cli.StringFlag{
		Name:    "s3-bucket",
		Usage:   "S3 bucket holding the database",
		EnvVars: []string{"MMDB_S3_BUCKET"},
	},
	&cli.StringFlag{
		Name:    "s3-key",
		Usage:   "S3 object key of the database",
		EnvVars: []string{"MMDB_S3_KEY"},
	},
}

func main() {
	app := newApp(os.Stdout)
	if err := app.Run(os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:  "geoip",
		Usage: "Resolve IP addresses to continent, country, region and city",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: config.ParseLogLevel(c.String("log-level")),
			}))
			slog.SetDefault(logger)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "lookup",
				Usage:     "Look up one or more IP addresses",
				ArgsUsage: "IP [IP...]",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "server",
						Aliases: []string{"s"},
						Usage:   "Query a running geoipd over gRPC instead of a local database",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Timeout for loading the database or each remote call",
						Value: 30 * time.Second,
					},
				}, sourceFlags...),
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return errors.New("at least one IP address is required")
					}
					resolver, cleanup, err := resolverFor(c)
					if err != nil {
						return err
					}
					defer cleanup()
					return runLookup(out, resolver, c.Args().Slice())
				},
			},
			{
				Name:  "info",
				Usage: "Print the metadata of a database",
				Flags: sourceFlags,
				Action: func(c *cli.Context) error {
					r, err := loadDatabase(c.Context, c)
					if err != nil {
						return err
					}
					return json.NewEncoder(out).Encode(r.Info())
				},
			},
		},
	}
}

// runLookup writes one JSON line per address. Invalid addresses are
// reported inline; a resolver error aborts.
func runLookup(out io.Writer, resolver geoip.Resolver, ips []string) error {
	enc := json.NewEncoder(out)
	for _, raw := range ips {
		ip := net.ParseIP(raw)
		if ip == nil {
			if err := enc.Encode(result{IP: raw, Error: "invalid IP address"}); err != nil {
				return err
			}
			continue
		}

		gd, err := resolver.LookupGeoData(ip)
		if err != nil {
			return fmt.Errorf("lookup %s: %w", raw, err)
		}
		if err := enc.Encode(result{IP: ip.String(), Geo: &gd}); err != nil {
			return err
		}
	}
	return nil
}

func resolverFor(c *cli.Context) (geoip.Resolver, func(), error) {
	if addr := c.String("server"); addr != "" {
		conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
		}
		r := &remoteResolver{
			client:  geoipv1.NewGeoIPServiceClient(conn),
			timeout: c.Duration("timeout"),
		}
		return r, func() { conn.Close() }, nil
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()
	r, err := loadDatabase(ctx, c)
	if err != nil {
		return nil, nil, err
	}
	return r, func() {}, nil
}

func loadDatabase(ctx context.Context, c *cli.Context) (*geoip.MaxMindResolver, error) {
	cfg := config.Config{
		MMDBPath: c.String("db"),
		S3Bucket: c.String("s3-bucket"),
		S3Key:    c.String("s3-key"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	src := data.Source{Path: cfg.MMDBPath, Bucket: cfg.S3Bucket, Key: cfg.S3Key}
	var client geoip.ObjectGetter
	if src.IsS3() {
		s3Client, err := data.NewS3Client(ctx)
		if err != nil {
			return nil, err
		}
		client = s3Client
	}

	slog.Debug("loading MMDB", "source", src.String())
	return data.Load(ctx, src, client)
}

// remoteResolver implements geoip.Resolver against a geoipd gRPC endpoint.
type remoteResolver struct {
	client  geoipv1.GeoIPServiceClient
	timeout time.Duration
}

func (r *remoteResolver) LookupGeoData(ip net.IP) (geoip.GeoData, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	resp, err := r.client.Lookup(ctx, wrapperspb.String(ip.String()))
	if err != nil {
		return geoip.GeoData{}, err
	}
	return geoipv1.ToGeoData(resp), nil
}
