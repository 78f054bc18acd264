package lookup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TomasB/geoip/internal/data"
	"github.com/TomasB/geoip/pkg/geoip"
	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
)

// mockResolver implements geoip.Resolver for testing.
type mockResolver struct {
	geo   geoip.GeoData
	err   error
	calls int
}

func (m *mockResolver) LookupGeoData(_ net.IP) (geoip.GeoData, error) {
	m.calls++
	return m.geo, m.err
}

func strPtr(s string) *string { return &s }

var usGeo = geoip.GeoData{
	Continent: strPtr("NA"),
	Country:   strPtr("US"),
	Region:    []string{"WA"},
	City:      strPtr("Milton"),
}

func setupRouter(resolver geoip.Resolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(resolver)
	r.GET("/api/v1/lookup/:ip", h.Lookup)
	r.POST("/api/v1/lookup", h.Batch)
	return r
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func post(router *gin.Engine, body []byte) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", "/api/v1/lookup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLookup_Success(t *testing.T) {
	router := setupRouter(&mockResolver{geo: usGeo})

	w := get(router, "/api/v1/lookup/216.160.83.56")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp LookupResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.IP != "216.160.83.56" {
		t.Errorf("expected ip 216.160.83.56, got %s", resp.IP)
	}
	if resp.Geo == nil {
		t.Fatal("expected geo data")
	}
	if diff := cmp.Diff(usGeo, *resp.Geo); diff != "" {
		t.Errorf("geo mismatch (-want +got):\n%s", diff)
	}
	if resp.Error != "" {
		t.Errorf("expected empty error, got %s", resp.Error)
	}
}

func TestLookup_EmptyGeoData(t *testing.T) {
	router := setupRouter(&mockResolver{})

	w := get(router, "/api/v1/lookup/1.2.3.4")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	expectedBody := `{"ip":"1.2.3.4","geo":{"continent":null,"country":null,"region":null,"city":null}}`
	if w.Body.String() != expectedBody {
		t.Errorf("expected body %s, got %s", expectedBody, w.Body.String())
	}
}

func TestLookup_EmptyRegion(t *testing.T) {
	router := setupRouter(&mockResolver{geo: geoip.GeoData{Region: []string{}}})

	w := get(router, "/api/v1/lookup/1.2.3.4")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	expectedBody := `{"ip":"1.2.3.4","geo":{"continent":null,"country":null,"region":[],"city":null}}`
	if w.Body.String() != expectedBody {
		t.Errorf("expected body %s, got %s", expectedBody, w.Body.String())
	}
}

func TestLookup_InvalidIP(t *testing.T) {
	resolver := &mockResolver{geo: usGeo}
	router := setupRouter(resolver)

	w := get(router, "/api/v1/lookup/not-an-ip")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}

	var resp LookupResponse
	json.Unmarshal(w.Body.Bytes(), &resp)

	if resp.Error != "invalid IP address" {
		t.Errorf("expected 'invalid IP address' error, got %q", resp.Error)
	}
	if resolver.calls != 0 {
		t.Errorf("expected no resolver calls, got %d", resolver.calls)
	}
}

func TestLookup_ResolverError(t *testing.T) {
	router := setupRouter(&mockResolver{err: fmt.Errorf("db failure")})

	w := get(router, "/api/v1/lookup/1.2.3.4")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}

	var resp LookupResponse
	json.Unmarshal(w.Body.Bytes(), &resp)

	if resp.Error != "lookup failed" {
		t.Errorf("expected 'lookup failed' error, got %q", resp.Error)
	}
}

func TestLookup_NotReady(t *testing.T) {
	router := setupRouter(data.NewStore())

	w := get(router, "/api/v1/lookup/1.2.3.4")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
}

func TestLookup_IPv6(t *testing.T) {
	router := setupRouter(&mockResolver{geo: geoip.GeoData{Country: strPtr("JP")}})

	w := get(router, "/api/v1/lookup/2001:218::1")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp LookupResponse
	json.Unmarshal(w.Body.Bytes(), &resp)

	if resp.Geo == nil || resp.Geo.Country == nil || *resp.Geo.Country != "JP" {
		t.Errorf("expected country JP, got %+v", resp.Geo)
	}
}

func TestBatch_Success(t *testing.T) {
	router := setupRouter(&mockResolver{geo: usGeo})

	body, _ := json.Marshal(BatchRequest{IPs: []string{"216.160.83.56", "bogus", "2001:218::"}})
	w := post(router, body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp BatchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(resp.Results))
	}
	if resp.Results[0].Geo == nil || resp.Results[0].Error != "" {
		t.Errorf("expected first result to resolve, got %+v", resp.Results[0])
	}
	if resp.Results[1].Geo != nil || resp.Results[1].Error != "invalid IP address" {
		t.Errorf("expected second result to be invalid, got %+v", resp.Results[1])
	}
	if resp.Results[1].IP != "bogus" {
		t.Errorf("expected invalid input to be echoed, got %q", resp.Results[1].IP)
	}
	if resp.Results[2].IP != "2001:218::" {
		t.Errorf("expected IPv6 result, got %q", resp.Results[2].IP)
	}
}

func TestBatch_InvalidRequests(t *testing.T) {
	tooMany := make([]string, 101)
	for i := range tooMany {
		tooMany[i] = "1.2.3.4"
	}
	tooManyBody, _ := json.Marshal(BatchRequest{IPs: tooMany})

	tests := []struct {
		name string
		body []byte
	}{
		{name: "invalid JSON", body: []byte("{bad json")},
		{name: "missing ips", body: []byte(`{}`)},
		{name: "empty ips", body: []byte(`{"ips":[]}`)},
		{name: "too many ips", body: tooManyBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(&mockResolver{geo: usGeo})
			w := post(router, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestBatch_ResolverError(t *testing.T) {
	router := setupRouter(&mockResolver{err: fmt.Errorf("db failure")})

	body, _ := json.Marshal(BatchRequest{IPs: []string{"1.2.3.4"}})
	w := post(router, body)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}

	var resp BatchResponse
	json.Unmarshal(w.Body.Bytes(), &resp)

	if resp.Error != "lookup failed" {
		t.Errorf("expected 'lookup failed' error, got %q", resp.Error)
	}
	if len(resp.Results) != 0 {
		t.Errorf("expected no partial results, got %d", len(resp.Results))
	}
}
