package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/evyataryagoni/issflyover/internal/logger"
	"github.com/evyataryagoni/issflyover/internal/metrics"
	"github.com/evyataryagoni/issflyover/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// recorder keeps the requests a test upstream received
type recorder struct {
	mu       sync.Mutex
	requests []*http.Request
}

func (r *recorder) all() []*http.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*http.Request(nil), r.requests...)
}

// newUpstream starts a test server that always answers with status and body
func newUpstream(t *testing.T, status int, body string) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		rec.requests = append(rec.requests, r)
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server, rec
}

func newTestClient(opts Options) *Client {
	return NewClient(opts, nil, logger.NewNop())
}

// TestClient_FetchMyIP_Success tests a normal IP lookup
func TestClient_FetchMyIP_Success(t *testing.T) {
	server, requests := newUpstream(t, http.StatusOK, `{"ip":"162.245.144.188"}`)
	client := newTestClient(Options{IPLookupURL: server.URL + "?format=json"})

	ip, err := client.FetchMyIP(context.Background())

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if ip != "162.245.144.188" {
		t.Errorf("expected IP 162.245.144.188, got %s", ip)
	}
	if len(requests.all()) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests.all()))
	}

	req := requests.all()[0]
	if req.Method != http.MethodGet {
		t.Errorf("expected GET, got %s", req.Method)
	}
	if req.URL.Query().Get("format") != "json" {
		t.Errorf("expected format=json, got %s", req.URL.RawQuery)
	}
	if req.Header.Get("User-Agent") != DefaultUserAgent {
		t.Errorf("expected default user agent, got %s", req.Header.Get("User-Agent"))
	}
}

// TestClient_FetchMyIP_BadStatus tests that a 500 produces an error mentioning the code
func TestClient_FetchMyIP_BadStatus(t *testing.T) {
	server, _ := newUpstream(t, http.StatusInternalServerError, "upstream exploded")
	client := newTestClient(Options{IPLookupURL: server.URL})

	ip, err := client.FetchMyIP(context.Background())

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if ip != "" {
		t.Errorf("expected empty IP, got %s", ip)
	}
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("expected ErrUnexpectedStatus, got %v", err)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("expected error to mention 500, got %s", err.Error())
	}
	if !strings.Contains(err.Error(), "upstream exploded") {
		t.Errorf("expected error to include body, got %s", err.Error())
	}
}

// TestClient_FetchMyIP_Transport tests a refused connection
func TestClient_FetchMyIP_Transport(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	client := newTestClient(Options{IPLookupURL: addr})

	ip, err := client.FetchMyIP(context.Background())

	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if ip != "" {
		t.Errorf("expected empty IP, got %s", ip)
	}
}

// TestClient_FetchMyIP_Malformed tests an unparseable body
func TestClient_FetchMyIP_Malformed(t *testing.T) {
	server, _ := newUpstream(t, http.StatusOK, `not json`)
	client := newTestClient(Options{IPLookupURL: server.URL})

	_, err := client.FetchMyIP(context.Background())

	if !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

// TestClient_FetchCoordsByIP_Success tests a successful geolocation
func TestClient_FetchCoordsByIP_Success(t *testing.T) {
	server, requests := newUpstream(t, http.StatusOK, `{"success":true,"latitude":38.0,"longitude":-122.0,"ip":"162.245.144.188"}`)
	client := newTestClient(Options{GeoLookupURL: server.URL + "/"})

	coords, err := client.FetchCoordsByIP(context.Background(), "162.245.144.188")

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if coords.Latitude != 38.0 || coords.Longitude != -122.0 {
		t.Errorf("expected (38, -122), got (%v, %v)", coords.Latitude, coords.Longitude)
	}
	if requests.all()[0].URL.Path != "/162.245.144.188" {
		t.Errorf("expected path /162.245.144.188, got %s", requests.all()[0].URL.Path)
	}
}

// TestClient_FetchCoordsByIP_Failure tests the success=false branch
func TestClient_FetchCoordsByIP_Failure(t *testing.T) {
	server, _ := newUpstream(t, http.StatusOK, `{"success":false,"message":"Invalid IP address","ip":"42"}`)
	client := newTestClient(Options{GeoLookupURL: server.URL + "/"})

	coords, err := client.FetchCoordsByIP(context.Background(), "42")

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if coords != nil {
		t.Errorf("expected nil coordinates, got %+v", coords)
	}
	if !errors.Is(err, ErrLookupFailed) {
		t.Errorf("expected ErrLookupFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid IP address") {
		t.Errorf("expected service message in error, got %s", err.Error())
	}
	if !strings.Contains(err.Error(), "42") {
		t.Errorf("expected failing IP in error, got %s", err.Error())
	}
}

// TestClient_FetchCoordsByIP_MissingSuccess tests that an absent flag counts as failure
func TestClient_FetchCoordsByIP_MissingSuccess(t *testing.T) {
	server, _ := newUpstream(t, http.StatusOK, `{"latitude":1,"longitude":2}`)
	client := newTestClient(Options{GeoLookupURL: server.URL + "/"})

	_, err := client.FetchCoordsByIP(context.Background(), "8.8.8.8")

	if !errors.Is(err, ErrLookupFailed) {
		t.Errorf("expected ErrLookupFailed, got %v", err)
	}
}

// TestClient_FetchISSFlyOverTimes_Success tests the flyover request and pass-through
func TestClient_FetchISSFlyOverTimes_Success(t *testing.T) {
	server, requests := newUpstream(t, http.StatusOK, `{"message":"success","response":[{"risetime":100,"duration":60}]}`)
	client := newTestClient(Options{FlyoverURL: server.URL + "/json/"})

	passes, err := client.FetchISSFlyOverTimes(context.Background(), models.Coordinates{Latitude: 38.0, Longitude: -122.5})

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(passes) != 1 {
		t.Fatalf("expected 1 pass, got %d", len(passes))
	}
	if passes[0].Risetime != 100 || passes[0].Duration != 60 {
		t.Errorf("expected {100 60}, got {%d %d}", passes[0].Risetime, passes[0].Duration)
	}
	if string(passes[0].Raw()) != `{"risetime":100,"duration":60}` {
		t.Errorf("expected raw record to be preserved, got %s", string(passes[0].Raw()))
	}

	query := requests.all()[0].URL.Query()
	if query.Get("lat") != "38" || query.Get("lon") != "-122.5" {
		t.Errorf("unexpected query: %s", requests.all()[0].URL.RawQuery)
	}
	if requests.all()[0].URL.Path != "/json/" {
		t.Errorf("expected path /json/, got %s", requests.all()[0].URL.Path)
	}
}

// TestClient_FetchISSFlyOverTimes_Errors tests the failure branches
func TestClient_FetchISSFlyOverTimes_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected error
		contains string
	}{
		{"message fail", http.StatusOK, `{"message":"fail","response":[]}`, ErrLookupFailed, "fail"},
		{"bad status", http.StatusServiceUnavailable, `down`, ErrUnexpectedStatus, "503"},
		{"malformed", http.StatusOK, `{"message":`, ErrDecode, "flyover"},
		{"missing message", http.StatusOK, `{"response":[]}`, ErrLookupFailed, "message status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newUpstream(t, tt.status, tt.body)
			client := newTestClient(Options{FlyoverURL: server.URL})

			passes, err := client.FetchISSFlyOverTimes(context.Background(), models.Coordinates{})

			if !errors.Is(err, tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, err)
			}
			if passes != nil {
				t.Errorf("expected nil passes, got %v", passes)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("expected error to contain %q, got %s", tt.contains, err.Error())
			}
		})
	}
}

// TestClient_Idempotent tests that repeated calls with identical responses give identical results
func TestClient_Idempotent(t *testing.T) {
	ipServer, _ := newUpstream(t, http.StatusOK, `{"ip":"1.2.3.4"}`)
	geoServer, _ := newUpstream(t, http.StatusOK, `{"success":true,"latitude":10.5,"longitude":20.25}`)
	flyServer, _ := newUpstream(t, http.StatusOK, `{"message":"success","response":[{"risetime":1,"duration":2},{"risetime":3,"duration":4}]}`)

	client := newTestClient(Options{
		IPLookupURL:  ipServer.URL,
		GeoLookupURL: geoServer.URL + "/",
		FlyoverURL:   flyServer.URL,
	})
	ctx := context.Background()

	ip1, err1 := client.FetchMyIP(ctx)
	ip2, err2 := client.FetchMyIP(ctx)
	if ip1 != ip2 || err1 != nil || err2 != nil {
		t.Errorf("FetchMyIP not idempotent: %q/%v vs %q/%v", ip1, err1, ip2, err2)
	}

	c1, _ := client.FetchCoordsByIP(ctx, ip1)
	c2, _ := client.FetchCoordsByIP(ctx, ip1)
	if !reflect.DeepEqual(c1, c2) {
		t.Errorf("FetchCoordsByIP not idempotent: %+v vs %+v", c1, c2)
	}

	p1, _ := client.FetchISSFlyOverTimes(ctx, *c1)
	p2, _ := client.FetchISSFlyOverTimes(ctx, *c1)
	if !reflect.DeepEqual(p1, p2) {
		t.Errorf("FetchISSFlyOverTimes not idempotent: %v vs %v", p1, p2)
	}
}

// TestClient_ContextCanceled tests that a canceled context aborts the request
func TestClient_ContextCanceled(t *testing.T) {
	server, _ := newUpstream(t, http.StatusOK, `{"ip":"1.2.3.4"}`)
	client := newTestClient(Options{IPLookupURL: server.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchMyIP(ctx)
	if !errors.Is(err, ErrTransport) {
		t.Errorf("expected ErrTransport for canceled context, got %v", err)
	}
}

// TestClient_Timeout tests the per-request timeout
func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	client := newTestClient(Options{IPLookupURL: server.URL, Timeout: 50 * time.Millisecond})

	_, err := client.FetchMyIP(context.Background())
	if !errors.Is(err, ErrTransport) {
		t.Errorf("expected ErrTransport on timeout, got %v", err)
	}
}

// TestClient_Metrics tests that upstream calls are counted per stage and result
func TestClient_Metrics(t *testing.T) {
	ipServer, _ := newUpstream(t, http.StatusOK, `{"ip":"1.2.3.4"}`)
	badServer, _ := newUpstream(t, http.StatusInternalServerError, `oops`)

	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	good := NewClient(Options{IPLookupURL: ipServer.URL}, m, logger.NewNop())
	bad := NewClient(Options{IPLookupURL: badServer.URL}, m, logger.NewNop())

	good.FetchMyIP(context.Background())
	good.FetchMyIP(context.Background())
	bad.FetchMyIP(context.Background())

	if got := testutil.ToFloat64(m.UpstreamRequestsTotal.WithLabelValues(StageIP, "success")); got != 2 {
		t.Errorf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(m.UpstreamRequestsTotal.WithLabelValues(StageIP, "bad_status")); got != 1 {
		t.Errorf("expected 1 bad_status, got %v", got)
	}
}

// TestClient_Defaults tests that empty options fall back to the public endpoints
func TestClient_Defaults(t *testing.T) {
	client := newTestClient(Options{})

	if client.ipURL != DefaultIPLookupURL {
		t.Errorf("expected %s, got %s", DefaultIPLookupURL, client.ipURL)
	}
	if client.geoURL != DefaultGeoLookupURL {
		t.Errorf("expected %s, got %s", DefaultGeoLookupURL, client.geoURL)
	}
	if client.flyoverURL != DefaultFlyoverURL {
		t.Errorf("expected %s, got %s", DefaultFlyoverURL, client.flyoverURL)
	}
}

// TestIsUpstream tests the error classifier
func TestIsUpstream(t *testing.T) {
	if !IsUpstream(ErrTransport) || !IsUpstream(ErrLookupFailed) {
		t.Error("expected sentinel errors to be upstream errors")
	}
	if IsUpstream(errors.New("something else")) {
		t.Error("expected unrelated error not to be upstream")
	}
}
