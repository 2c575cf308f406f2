package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halalcities/halalcities/internal/cache"
	"github.com/halalcities/halalcities/internal/directory"
	"github.com/halalcities/halalcities/internal/geo"
	"github.com/halalcities/halalcities/internal/prayer"
	"github.com/halalcities/halalcities/internal/ramadan"
)

var fixedNow = time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, withCities bool, c *cache.Cache) *gin.Engine {
	t.Helper()
	logger := zerolog.Nop()
	deps := Deps{
		Cache:  c,
		Logger: &logger,
		Now:    func() time.Time { return fixedNow },
	}
	if withCities {
		store, err := directory.OpenSQLite(filepath.Join(t.TempDir(), "cities.db"))
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		require.NoError(t, directory.Seed(context.Background(), store))
		deps.Cities = store
	}
	return NewRouter(deps)
}

func get(t *testing.T, r http.Handler, path string, params url.Values) *httptest.ResponseRecorder {
	t.Helper()
	if params != nil {
		path += "?" + params.Encode()
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}

var london = url.Values{"lat": {"51.5074"}, "lon": {"-0.1278"}}

func with(base url.Values, kv ...string) url.Values {
	out := url.Values{}
	for k, v := range base {
		out[k] = append([]string(nil), v...)
	}
	for i := 0; i+1 < len(kv); i += 2 {
		out.Set(kv[i], kv[i+1])
	}
	return out
}

// ---------------------------------------------------------------------------
// infrastructure
// ---------------------------------------------------------------------------

func TestHealthz(t *testing.T) {
	r := newTestRouter(t, false, nil)
	w := get(t, r, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	r := newTestRouter(t, false, nil)

	w := get(t, r, "/healthz", nil)
	_, err := uuid.Parse(w.Header().Get(requestIDHeader))
	assert.NoError(t, err, "generated request id should be a UUID")

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, id)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get(requestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "not-a-uuid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Header().Get(requestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t, false, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/methods", nil)
	req.Header.Set("Origin", "https://example.org")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery(t *testing.T) {
	logger := zerolog.Nop()
	r := NewRouter(Deps{Logger: &logger})
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := get(t, r, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", errorBody(t, w))
}

// ---------------------------------------------------------------------------
// /api/methods
// ---------------------------------------------------------------------------

func TestListMethods(t *testing.T) {
	r := newTestRouter(t, false, nil)
	w := get(t, r, "/api/methods", nil)
	require.Equal(t, http.StatusOK, w.Code)

	methods := decode[[]methodResponse](t, w)
	require.Len(t, methods, len(prayer.Methods()))
	assert.Equal(t, "ISNA", methods[0].Tag)

	for _, m := range methods {
		if m.Tag == "Makkah" {
			assert.Equal(t, 90, m.IshaDelay)
			assert.Zero(t, m.IshaAngle)
		}
	}
}

// ---------------------------------------------------------------------------
// /api/prayer-times
// ---------------------------------------------------------------------------

func TestPrayerTimes_MatchesCalculation(t *testing.T) {
	r := newTestRouter(t, false, nil)
	w := get(t, r, "/api/prayer-times", with(london, "date", "2026-03-20", "method", "mwl", "tz", "Europe/London"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[prayerTimesResponse](t, w)
	loc, _ := time.LoadLocation("Europe/London")
	want := prayer.Calculate(
		geo.Coordinate{Latitude: 51.5074, Longitude: -0.1278},
		time.Date(2026, 3, 20, 0, 0, 0, 0, loc), prayer.MWL, prayer.Options{Location: loc},
	).Strings(prayer.Layout24h)

	assert.Equal(t, "2026-03-20", resp.Date)
	assert.Equal(t, "Europe/London", resp.Timezone)
	assert.Equal(t, "MWL", resp.Method)
	assert.Equal(t, "Shafi", resp.School)
	assert.Equal(t, "none", resp.HighLatitude)
	assert.False(t, resp.Ramadan, "Ramadan 2026 ends on 19 March")
	assert.Equal(t, want, resp.Times)
	assert.Nil(t, resp.City)
}

func TestPrayerTimes_Defaults(t *testing.T) {
	r := newTestRouter(t, false, nil)
	cairo := url.Values{"lat": {"30.0444"}, "lon": {"31.2357"}}
	w := get(t, r, "/api/prayer-times", cairo)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[prayerTimesResponse](t, w)
	assert.Equal(t, "2026-03-20", resp.Date, "date defaults to today")
	assert.Equal(t, "UTC+2", resp.Timezone, "zone defaults to the longitude zone")
	assert.Equal(t, "ISNA", resp.Method)
}

func TestPrayerTimes_TwelveHour(t *testing.T) {
	r := newTestRouter(t, false, nil)
	w := get(t, r, "/api/prayer-times", with(london, "format", "12h", "tz", "Europe/London"))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[prayerTimesResponse](t, w)
	assert.True(t, strings.HasSuffix(resp.Times.Fajr, "AM"), resp.Times.Fajr)
	assert.True(t, strings.HasSuffix(resp.Times.Maghrib, "PM"), resp.Times.Maghrib)
}

func TestPrayerTimes_HanafiAndHighLatitude(t *testing.T) {
	r := newTestRouter(t, false, nil)
	copenhagen := url.Values{"lat": {"55.6761"}, "lon": {"12.5683"}, "tz": {"Europe/Copenhagen"}, "date": {"2026-06-21"}, "method": {"MWL"}}

	w := get(t, r, "/api/prayer-times", copenhagen)
	require.Equal(t, http.StatusOK, w.Code)
	plain := decode[prayerTimesResponse](t, w)
	assert.Equal(t, prayer.Unavailable, plain.Times.Isha)

	w = get(t, r, "/api/prayer-times", with(copenhagen, "high_lat", "one-seventh", "school", "hanafi"))
	require.Equal(t, http.StatusOK, w.Code)
	adjusted := decode[prayerTimesResponse](t, w)
	assert.NotEqual(t, prayer.Unavailable, adjusted.Times.Isha)
	assert.Equal(t, "one-seventh", adjusted.HighLatitude)
	assert.Equal(t, "Hanafi", adjusted.School)
	assert.Greater(t, adjusted.Times.Asr, plain.Times.Asr)
}

func TestPrayerTimes_MakkahRamadanDelay(t *testing.T) {
	r := newTestRouter(t, false, nil)
	makkah := url.Values{"lat": {"21.4225"}, "lon": {"39.8262"}, "tz": {"Asia/Riyadh"}, "method": {"Makkah"}}

	minutesBetween := func(resp prayerTimesResponse) time.Duration {
		m, err := time.Parse(prayer.Layout24h, resp.Times.Maghrib)
		require.NoError(t, err)
		i, err := time.Parse(prayer.Layout24h, resp.Times.Isha)
		require.NoError(t, err)
		return i.Sub(m)
	}

	w := get(t, r, "/api/prayer-times", with(makkah, "date", "2026-02-25"))
	require.Equal(t, http.StatusOK, w.Code)
	inRamadan := decode[prayerTimesResponse](t, w)
	assert.True(t, inRamadan.Ramadan)
	assert.Equal(t, 120*time.Minute, minutesBetween(inRamadan))

	w = get(t, r, "/api/prayer-times", with(makkah, "date", "2026-05-01"))
	require.Equal(t, http.StatusOK, w.Code)
	normal := decode[prayerTimesResponse](t, w)
	assert.False(t, normal.Ramadan)
	assert.Equal(t, 90*time.Minute, minutesBetween(normal))
}

func TestPrayerTimes_BadRequests(t *testing.T) {
	r := newTestRouter(t, false, nil)

	tests := []struct {
		name   string
		params url.Values
		want   string
	}{
		{"missing lat", url.Values{"lon": {"0"}}, "lat is required"},
		{"non-numeric lon", url.Values{"lat": {"0"}, "lon": {"east"}}, "lon must be a number"},
		{"latitude out of range", url.Values{"lat": {"100"}, "lon": {"0"}}, "latitude"},
		{"unknown method", with(london, "method", "Lunar"), "unknown calculation method"},
		{"bad date", with(london, "date", "20-03-2026"), "YYYY-MM-DD"},
		{"bad timezone", with(london, "tz", "Mars/Olympus"), "unknown timezone"},
		{"bad school", with(london, "school", "maliki"), "school"},
		{"bad high latitude rule", with(london, "high_lat", "sideways"), "high latitude"},
		{"bad format", with(london, "format", "36h"), "12h or 24h"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, r, "/api/prayer-times", tt.params)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, errorBody(t, w), tt.want)
		})
	}
}

// ---------------------------------------------------------------------------
// /api/qibla
// ---------------------------------------------------------------------------

func TestQibla(t *testing.T) {
	r := newTestRouter(t, false, nil)
	w := get(t, r, "/api/qibla", london)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[qiblaResponse](t, w)
	assert.InDelta(t, 119.0, resp.BearingDegrees, 0.5)
	assert.InDelta(t, 4794, resp.DistanceKm, 10)
	assert.Equal(t, "ESE", resp.Compass)

	w = get(t, r, "/api/qibla", url.Values{"lat": {"0"}, "lon": {"181"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ---------------------------------------------------------------------------
// /api/next
// ---------------------------------------------------------------------------

func TestNext(t *testing.T) {
	r := newTestRouter(t, false, nil)
	cairo := url.Values{"lat": {"30.0444"}, "lon": {"31.2357"}, "tz": {"Africa/Cairo"}, "method": {"Egypt"}}

	w := get(t, r, "/api/next", with(cairo, "now", "2026-03-20T10:00:00+02:00"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[map[string]any](t, w)
	assert.Equal(t, "Dhuhr", resp["name"])
	assert.Equal(t, "Fajr", resp["current"])
	assert.NotEmpty(t, resp["remaining_label"])

	w = get(t, r, "/api/next", with(cairo, "now", "2026-03-20T23:30:00+02:00"))
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[map[string]any](t, w)
	assert.Equal(t, "Fajr", resp["name"])
	assert.True(t, strings.HasPrefix(resp["time"].(string), "2026-03-21T"), resp["time"])

	w = get(t, r, "/api/next", with(cairo, "now", "tomorrow"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ---------------------------------------------------------------------------
// /api/ramadan/:year
// ---------------------------------------------------------------------------

func TestRamadan(t *testing.T) {
	r := newTestRouter(t, false, nil)
	w := get(t, r, "/api/ramadan/2026", with(london, "tz", "Europe/London", "method", "MWL"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[ramadanResponse](t, w)
	assert.Equal(t, 2026, resp.Year)
	assert.Equal(t, "2026-02-18", resp.Start)
	assert.Equal(t, "2026-03-19", resp.End)
	require.Len(t, resp.Days, 30)
	assert.Equal(t, 1, resp.Days[0].Day)
	assert.Equal(t, "2026-02-18", resp.Days[0].Date)
	assert.Equal(t, 30, resp.Summary.Days)
	assert.LessOrEqual(t, resp.Summary.ShortestMinutes, resp.Summary.AverageMinutes)
	assert.LessOrEqual(t, resp.Summary.AverageMinutes, resp.Summary.LongestMinutes)
	// Days lengthen through late winter in the northern hemisphere.
	assert.Greater(t, resp.Days[29].DurationMinutes, resp.Days[0].DurationMinutes)
}

func TestRamadan_Errors(t *testing.T) {
	r := newTestRouter(t, false, nil)

	w := get(t, r, "/api/ramadan/2099", london)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(t, r, "/api/ramadan/next", london)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(t, r, "/api/ramadan/2026", url.Values{"lat": {"x"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRamadan_UsesCache(t *testing.T) {
	store, err := cache.NewFileStore(t.TempDir())
	require.NoError(t, err)
	c := cache.New(store)
	r := newTestRouter(t, false, c)

	q := cache.Query{Latitude: 51.5074, Longitude: -0.1278, Method: int(prayer.MWL), Timezone: "Europe/London"}
	ctx := context.Background()
	rng, err := ramadan.DefaultCalendar().Range(2026)
	require.NoError(t, err)
	require.Nil(t, c.LoadRamadan(ctx, 2026, rng, q))

	w := get(t, r, "/api/ramadan/2026", with(london, "tz", "Europe/London", "method", "MWL"))
	require.Equal(t, http.StatusOK, w.Code)
	first := decode[ramadanResponse](t, w)

	cached := c.LoadRamadan(ctx, 2026, rng, q)
	require.Len(t, cached, 30)

	w = get(t, r, "/api/ramadan/2026", with(london, "tz", "Europe/London", "method", "MWL"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, first, decode[ramadanResponse](t, w))
}

func TestRamadan_CorrectedCalendarBypassesCache(t *testing.T) {
	store, err := cache.NewFileStore(t.TempDir())
	require.NoError(t, err)
	c := cache.New(store)
	params := with(london, "tz", "Europe/London", "method", "MWL")

	w := get(t, newTestRouter(t, false, c), "/api/ramadan/2026", params)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, decode[ramadanResponse](t, w).Days, 30)

	// Ramadan started a day later than the built-in table says.
	corrected, err := ramadan.ParseCalendar([]byte("years:\n  2026: {start: 2026-02-19, end: 2026-03-19}\n"))
	require.NoError(t, err)
	logger := zerolog.Nop()
	r := NewRouter(Deps{Cache: c, Calendar: corrected, Logger: &logger, Now: func() time.Time { return fixedNow }})

	w = get(t, r, "/api/ramadan/2026", params)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[ramadanResponse](t, w)
	assert.Equal(t, "2026-02-19", resp.Start)
	require.Len(t, resp.Days, 29)
	assert.Equal(t, "2026-02-19", resp.Days[0].Date)
	assert.Equal(t, "2026-03-19", resp.Days[28].Date)
}

// ---------------------------------------------------------------------------
// /api/cities
// ---------------------------------------------------------------------------

func TestCities_List(t *testing.T) {
	r := newTestRouter(t, true, nil)

	w := get(t, r, "/api/cities", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]directory.City](t, w), len(directory.BuiltinCities))

	w = get(t, r, "/api/cities", url.Values{"country": {"pakistan"}})
	require.Equal(t, http.StatusOK, w.Code)
	cities := decode[[]directory.City](t, w)
	require.Len(t, cities, 2)
	assert.Equal(t, "karachi", cities[0].Slug)

	w = get(t, r, "/api/cities", url.Values{"country": {"Atlantis"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestCities_Get(t *testing.T) {
	r := newTestRouter(t, true, nil)

	w := get(t, r, "/api/cities/kuala-lumpur", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Kuala Lumpur", decode[directory.City](t, w).Name)

	w = get(t, r, "/api/cities/atlantis", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, errorBody(t, w), "city not found")
}

func TestCities_PrayerTimes(t *testing.T) {
	r := newTestRouter(t, true, nil)

	w := get(t, r, "/api/cities/cairo/prayer-times", url.Values{"date": {"2026-03-20"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[prayerTimesResponse](t, w)
	assert.Equal(t, "Africa/Cairo", resp.Timezone)
	assert.Equal(t, "Egypt", resp.Method, "city's customary method is the default")
	require.NotNil(t, resp.City)
	assert.Equal(t, "cairo", resp.City.Slug)

	w = get(t, r, "/api/cities/cairo/prayer-times", url.Values{"method": {"ISNA"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ISNA", decode[prayerTimesResponse](t, w).Method)

	w = get(t, r, "/api/cities/atlantis/prayer-times", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCities_Qibla(t *testing.T) {
	r := newTestRouter(t, true, nil)

	w := get(t, r, "/api/cities/makkah/qibla", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[qiblaResponse](t, w)
	assert.InDelta(t, 0, resp.DistanceKm, 0.5)
	require.NotNil(t, resp.City)
}

func TestCities_DisabledWithoutDirectory(t *testing.T) {
	r := newTestRouter(t, false, nil)
	w := get(t, r, "/api/cities", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ---------------------------------------------------------------------------
// Serve
// ---------------------------------------------------------------------------

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
