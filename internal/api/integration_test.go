package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"gridhash/internal/api/handlers"
	"gridhash/internal/config"
	"gridhash/internal/geo"
	"gridhash/internal/repository"
	"gridhash/internal/repository/memory"
	"gridhash/internal/repository/redisstore"
	"gridhash/internal/services"
)

func setupTestServerWithRepo(repo repository.MarkerRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := config.NewDefaultConfig()
	cfg.Geo.SearchRadiusKm = 5.0
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	spatialIndex := geo.NewSpatialIndex(cfg.Geo.IndexPrecision)
	geohashService := services.NewGeohashService(log)
	markerService := services.NewMarkerService(spatialIndex, repo, cfg.Geo.SearchRadiusKm, log)

	router := NewRouter(
		handlers.NewGeohashHandler(geohashService),
		handlers.NewMarkerHandler(markerService),
		log,
	)
	engine := gin.New()
	router.Setup(engine)

	return engine
}

func setupTestServer() *gin.Engine {
	return setupTestServerWithRepo(memory.NewMarkerRepository())
}

func doRequest(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid JSON body %q: %v", w.Body.String(), err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	engine := setupTestServer()

	w := doRequest(engine, "GET", "/health", "")

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	engine := setupTestServer()

	doRequest(engine, "GET", "/geohash/3d3d/bounds", "")
	w := doRequest(engine, "GET", "/metrics", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `gridhash_operations_total{op="bounds",result="ok"}`) {
		t.Error("Expected bounds counter in metrics output")
	}
}

func TestEncodeEndpoint(t *testing.T) {
	engine := setupTestServer()

	w := doRequest(engine, "GET", "/geohash/encode?lat=20&lon=80&precision=4", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	var response map[string]string
	decodeBody(t, w, &response)
	if response["geohash"] != "3d3d" {
		t.Errorf("Expected geohash 3d3d, got %v", response["geohash"])
	}

	w = doRequest(engine, "GET", "/geohash/encode?lat=9.8&lon=71.8", "")
	decodeBody(t, w, &response)
	if response["geohash"] != "0" {
		t.Errorf("Expected auto precision geohash 0, got %v", response["geohash"])
	}
}

func TestEncodeEndpointInvalidInput(t *testing.T) {
	engine := setupTestServer()

	for _, q := range []string{"lat=abc&lon=80", "lat=20", "lat=20&lon=80&precision=x"} {
		w := doRequest(engine, "GET", "/geohash/encode?"+q, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", q, w.Code)
		}
	}
}

func TestDecodeAndBoundsEndpoints(t *testing.T) {
	engine := setupTestServer()

	w := doRequest(engine, "GET", "/geohash/3D3D/decode", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var coord geo.Coordinate
	decodeBody(t, w, &coord)
	if coord != (geo.Coordinate{Lat: 20.0, Lon: 80.01}) {
		t.Errorf("Expected (20, 80.01), got %+v", coord)
	}

	w = doRequest(engine, "GET", "/geohash/3/bounds", "")
	var cell geo.Cell
	decodeBody(t, w, &cell)
	want := geo.Cell{SW: geo.Coordinate{Lat: 13.5, Lon: 75.5}, NE: geo.Coordinate{Lat: 21, Lon: 83}}
	if cell != want {
		t.Errorf("Expected %+v, got %+v", want, cell)
	}

	w = doRequest(engine, "GET", "/geohash/xyz/bounds", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for xyz, got %d", w.Code)
	}
}

func TestAdjacentEndpoint(t *testing.T) {
	engine := setupTestServer()

	w := doRequest(engine, "GET", "/geohash/3d3d/adjacent/n", "")
	var response map[string]string
	decodeBody(t, w, &response)
	if response["geohash"] != "3d68" {
		t.Errorf("Expected 3d68, got %v", response["geohash"])
	}

	w = doRequest(engine, "GET", "/geohash/0000/adjacent/s", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422 at the domain edge, got %d", w.Code)
	}

	w = doRequest(engine, "GET", "/geohash/3d3d/adjacent/up", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for a bad direction, got %d", w.Code)
	}
}

func TestNeighboursEndpoint(t *testing.T) {
	engine := setupTestServer()

	w := doRequest(engine, "GET", "/geohash/3d3d/neighbours", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var response map[string]string
	decodeBody(t, w, &response)
	if len(response) != 8 {
		t.Fatalf("Expected 8 neighbours, got %d", len(response))
	}
	for _, d := range []string{"n", "ne", "e", "se", "s", "sw", "w", "nw"} {
		if len(response[d]) != 4 {
			t.Errorf("neighbour %s = %q, want a 4-symbol geohash", d, response[d])
		}
	}
}

func TestGridEndpoint(t *testing.T) {
	engine := setupTestServer()

	w := doRequest(engine, "GET", "/geohash/000/grid", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var grid geo.Grid
	decodeBody(t, w, &grid)
	if grid.Center.Geohash != "000" || len(grid.Neighbours) != 3 {
		t.Errorf("Unexpected corner grid: %+v", grid)
	}
}

func TestMarkerLifecycle(t *testing.T) {
	engine := setupTestServer()

	w := doRequest(engine, "PUT", "/markers", `{"id":"marker-1","label":"India Gate","lat":28.6139,"lon":77.2090}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	var marker map[string]interface{}
	decodeBody(t, w, &marker)
	if marker["geohash"] != "70a8d7" {
		t.Errorf("Expected geohash 70a8d7, got %v", marker["geohash"])
	}

	doRequest(engine, "PUT", "/markers", `{"id":"marker-2","lat":28.6229,"lon":77.2090}`)

	w = doRequest(engine, "GET", "/markers/nearby?lat=28.6139&lon=77.2090", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	var nearby struct {
		Count   int                      `json:"count"`
		Markers []geo.MarkerWithDistance `json:"markers"`
	}
	decodeBody(t, w, &nearby)
	if nearby.Count != 2 || nearby.Markers[0].Marker.ID != "marker-1" {
		t.Errorf("Unexpected nearby result: %+v", nearby)
	}

	w = doRequest(engine, "GET", "/markers/marker-1", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	w = doRequest(engine, "DELETE", "/markers/marker-1", "")
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}

	w = doRequest(engine, "GET", "/markers/marker-1", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after delete, got %d", w.Code)
	}
}

func TestPutMarkerValidation(t *testing.T) {
	engine := setupTestServer()

	w := doRequest(engine, "PUT", "/markers", `{"label":"no coordinates"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	w = doRequest(engine, "PUT", "/markers", `{"lat":51.5,"lon":-0.12}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422 outside the domain, got %d", w.Code)
	}

	w = doRequest(engine, "GET", "/markers/nearby?lat=x&lon=80", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestMarkersWithRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	engine := setupTestServerWithRepo(redisstore.NewMarkerRepository(rdb, ""))

	w := doRequest(engine, "PUT", "/markers", `{"id":"marker-1","lat":20,"lon":80}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	if !mr.Exists("gridhash:marker:marker-1") {
		t.Error("Expected marker hash in redis")
	}

	w = doRequest(engine, "GET", "/markers/marker-1", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}
