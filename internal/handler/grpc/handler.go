package grpc

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"github.com/TomasB/geoip/internal/data"
	"github.com/TomasB/geoip/pkg/geoip"
	geoipv1 "github.com/TomasB/geoip/pkg/geoip/v1"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Handler implements the gRPC GeoIPService.
type Handler struct {
	resolver geoip.Resolver
}

var _ geoipv1.GeoIPServiceServer = (*Handler)(nil)

// NewHandler creates a new gRPC handler with the given Resolver.
func NewHandler(resolver geoip.Resolver) *Handler {
	return &Handler{resolver: resolver}
}

// Lookup resolves the IP address carried in req.
func (h *Handler) Lookup(_ context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req == nil || req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "ip is required")
	}

	ip := net.ParseIP(req.GetValue())
	if ip == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid IP address")
	}

	gd, err := h.resolver.LookupGeoData(ip)
	if err != nil {
		if errors.Is(err, data.ErrNotReady) {
			return nil, status.Error(codes.Unavailable, err.Error())
		}
		slog.Error("geo data lookup failed", "ip", req.GetValue(), "error", err)
		return nil, status.Error(codes.Internal, "lookup failed")
	}

	resp, err := geoipv1.FromGeoData(gd)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode geo data")
	}
	return resp, nil
}
