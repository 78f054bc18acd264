package geoipv1

import (
	"github.com/TomasB/geoip/pkg/geoip"
	"google.golang.org/protobuf/types/known/structpb"
)

// FromGeoData encodes gd with the same field names as its JSON form.
// Absent fields become null values.
func FromGeoData(gd geoip.GeoData) (*structpb.Struct, error) {
	var region any
	if gd.Region != nil {
		list := make([]any, len(gd.Region))
		for i, code := range gd.Region {
			list[i] = code
		}
		region = list
	}

	return structpb.NewStruct(map[string]any{
		"continent": optional(gd.Continent),
		"country":   optional(gd.Country),
		"region":    region,
		"city":      optional(gd.City),
	})
}

// ToGeoData decodes a Struct produced by FromGeoData. Missing, null or
// non-string values decode as absent.
func ToGeoData(s *structpb.Struct) geoip.GeoData {
	fields := s.GetFields()

	gd := geoip.GeoData{
		Continent: stringField(fields["continent"]),
		Country:   stringField(fields["country"]),
		City:      stringField(fields["city"]),
	}

	if list, ok := fields["region"].GetKind().(*structpb.Value_ListValue); ok {
		gd.Region = make([]string, 0, len(list.ListValue.GetValues()))
		for _, v := range list.ListValue.GetValues() {
			if code, ok := v.GetKind().(*structpb.Value_StringValue); ok {
				gd.Region = append(gd.Region, code.StringValue)
			}
		}
	}

	return gd
}

func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func stringField(v *structpb.Value) *string {
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return nil
	}
	s := sv.StringValue
	return &s
}
