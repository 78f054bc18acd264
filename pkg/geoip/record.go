package geoip

// cityRecord mirrors the parts of a GeoIP2 City record that GeoData is
// built from. Sub-records are pointers so that a missing key decodes to
// nil instead of a zero value.
type cityRecord struct {
	Continent    *continentRecord     `maxminddb:"continent"`
	Country      *countryRecord       `maxminddb:"country"`
	Subdivisions *[]subdivisionRecord `maxminddb:"subdivisions"`
	City         *cityNameRecord      `maxminddb:"city"`
}

type continentRecord struct {
	Code *string `maxminddb:"code"`
}

type countryRecord struct {
	IsoCode *string `maxminddb:"iso_code"`
}

type subdivisionRecord struct {
	IsoCode *string `maxminddb:"iso_code"`
}

type cityNameRecord struct {
	Names map[string]string `maxminddb:"names"`
}

const cityNameLanguage = "en"

// normalize flattens the record. Each field is derived only from its own
// sub-record and stops at the first missing link.
func (rec cityRecord) normalize() GeoData {
	var gd GeoData

	if rec.Continent != nil && rec.Continent.Code != nil {
		gd.Continent = rec.Continent.Code
	}

	if rec.Country != nil && rec.Country.IsoCode != nil {
		gd.Country = rec.Country.IsoCode
	}

	if rec.Subdivisions != nil {
		gd.Region = make([]string, 0, len(*rec.Subdivisions))
		for _, sub := range *rec.Subdivisions {
			if sub.IsoCode != nil {
				gd.Region = append(gd.Region, *sub.IsoCode)
			}
		}
	}

	if rec.City != nil && rec.City.Names != nil {
		if name, ok := rec.City.Names[cityNameLanguage]; ok {
			gd.City = &name
		}
	}

	return gd
}
