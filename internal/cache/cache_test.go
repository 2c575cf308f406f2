package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/halalcities/halalcities/internal/api"
	"github.com/halalcities/halalcities/internal/geo"
	"github.com/halalcities/halalcities/internal/ramadan"
)

func sampleAPIResponse() *api.Response {
	return &api.Response{
		Code:   200,
		Status: "OK",
		Data: api.Data{
			Timings: api.Timings{
				Fajr:       "05:17",
				Sunrise:    "06:48",
				Dhuhr:      "12:13",
				Asr:        "15:02",
				Sunset:     "17:39",
				Maghrib:    "17:39",
				Isha:       "19:10",
				Imsak:      "05:07",
				Midnight:   "00:14",
				Firstthird: "22:02",
				Lastthird:  "02:25",
			},
			Date: api.DateInfo{
				Hijri: api.HijriDate{Day: "10", Month: api.HijriMonth{En: "Ramaḍān"}, Year: "1447"},
			},
			Meta: api.Meta{
				Latitude:  51.5074,
				Longitude: -0.1278,
				Timezone:  "Europe/London",
				Method:    api.MethodInfo{ID: 2, Name: "ISNA"},
				School:    "STANDARD",
			},
		},
	}
}

func newFileCache(t *testing.T) (*Cache, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore(%q) error: %v", dir, err)
	}
	return New(store), dir
}

var london = Query{Latitude: 51.5074, Longitude: -0.1278, Method: 2}

// ---------------------------------------------------------------------------
// FileStore
// ---------------------------------------------------------------------------

func TestNewFileStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "subdir", "cache")
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore(%q) error: %v", dir, err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Errorf("directory %q was not created", dir)
	}
	if s.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", s.Dir(), dir)
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("hello"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("Get = %q, want %q", got, "hello")
	}
}

func TestFileStore_Miss(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	if _, err := s.Get(context.Background(), "absent"); err != ErrMiss {
		t.Errorf("Get(absent) error = %v, want ErrMiss", err)
	}
}

func TestFileStore_Expiry(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	ctx := context.Background()

	now := time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	_ = s.Set(ctx, "k", []byte("v"), time.Hour)

	now = now.Add(59 * time.Minute)
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Errorf("Get before expiry error = %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := s.Get(ctx, "k"); err != ErrMiss {
		t.Errorf("Get after expiry error = %v, want ErrMiss", err)
	}
}

func TestFileStore_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(dir)
	ctx := context.Background()
	_ = s.Set(ctx, "k", []byte("v"), 0)

	os.WriteFile(filepath.Join(dir, fileName("k")), []byte("not-json"), 0o644)

	if _, err := s.Get(ctx, "k"); err != ErrMiss {
		t.Errorf("Get on corrupt file error = %v, want ErrMiss", err)
	}
}

func TestFileName_Deterministic(t *testing.T) {
	if fileName("a|b") != fileName("a|b") {
		t.Error("fileName should be deterministic")
	}
	if fileName("a|b") == fileName("a|c") {
		t.Error("different keys should hash to different files")
	}
	if got := len(fileName("x")); got != 16+len(".json") {
		t.Errorf("fileName length = %d", got)
	}
}

// ---------------------------------------------------------------------------
// SaveTimings / LoadTimings round-trip
// ---------------------------------------------------------------------------

func TestTimings_RoundTrip(t *testing.T) {
	c, _ := newFileCache(t)
	ctx := context.Background()
	date := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	if err := c.SaveTimings(ctx, date, london, sampleAPIResponse()); err != nil {
		t.Fatalf("SaveTimings error: %v", err)
	}

	entry := c.LoadTimings(ctx, date, london)
	if entry == nil {
		t.Fatal("LoadTimings returned nil after save")
	}
	if entry.Timings.Fajr != "05:17" {
		t.Errorf("Fajr = %q, want %q", entry.Timings.Fajr, "05:17")
	}
	if entry.Meta.Timezone != "Europe/London" {
		t.Errorf("Timezone = %q, want %q", entry.Meta.Timezone, "Europe/London")
	}
	if entry.Hijri.Year != "1447" {
		t.Errorf("Hijri year = %q, want 1447", entry.Hijri.Year)
	}
}

func TestTimings_CacheMiss(t *testing.T) {
	c, _ := newFileCache(t)
	date := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	if entry := c.LoadTimings(context.Background(), date, london); entry != nil {
		t.Error("expected nil for cache miss, got entry")
	}
}

func TestTimings_StaleDate(t *testing.T) {
	c, _ := newFileCache(t)
	ctx := context.Background()
	today := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	_ = c.SaveTimings(ctx, today, london, sampleAPIResponse())

	if entry := c.LoadTimings(ctx, today.AddDate(0, 0, 1), london); entry != nil {
		t.Error("expected nil for another date, got entry")
	}
}

func TestTimings_DifferentParams(t *testing.T) {
	c, _ := newFileCache(t)
	ctx := context.Background()
	date := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	_ = c.SaveTimings(ctx, date, london, sampleAPIResponse())

	other := london
	other.Method = 3
	if entry := c.LoadTimings(ctx, date, other); entry != nil {
		t.Error("expected nil for different method, got entry")
	}
	other = london
	other.School = 1
	if entry := c.LoadTimings(ctx, date, other); entry != nil {
		t.Error("expected nil for different school, got entry")
	}
}

func TestTimings_CityKey(t *testing.T) {
	c, _ := newFileCache(t)
	ctx := context.Background()
	date := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	q := Query{City: "London", Country: "UK", Method: -1, School: -1}
	_ = c.SaveTimings(ctx, date, q, sampleAPIResponse())

	if entry := c.LoadTimings(ctx, date, q); entry == nil {
		t.Fatal("expected entry for city-keyed cache, got nil")
	}

	q.City, q.Country = "Paris", "FR"
	if entry := c.LoadTimings(ctx, date, q); entry != nil {
		t.Error("expected nil for different city, got entry")
	}
}

// ---------------------------------------------------------------------------
// SaveGeo / LoadGeo round-trip
// ---------------------------------------------------------------------------

func TestGeo_RoundTrip(t *testing.T) {
	c, _ := newFileCache(t)
	ctx := context.Background()

	loc := &geo.Location{
		Latitude:  51.5074,
		Longitude: -0.1278,
		City:      "London",
		Country:   "United Kingdom",
		Timezone:  "Europe/London",
	}
	if err := c.SaveGeo(ctx, loc); err != nil {
		t.Fatalf("SaveGeo error: %v", err)
	}

	got := c.LoadGeo(ctx)
	if got == nil {
		t.Fatal("LoadGeo returned nil after save")
	}
	if got.City != "London" || got.Timezone != "Europe/London" {
		t.Errorf("LoadGeo = %+v", got)
	}
}

func TestGeo_CacheMiss(t *testing.T) {
	c, _ := newFileCache(t)
	if got := c.LoadGeo(context.Background()); got != nil {
		t.Error("expected nil for geo cache miss, got entry")
	}
}

func TestGeo_ExpiredTTL(t *testing.T) {
	c, _ := newFileCache(t)
	ctx := context.Background()

	// Write a geo entry stamped 25 hours ago (past the 24h TTL) without store expiry.
	entry := GeoEntry{
		Location: geo.Location{Latitude: 51.5074, Longitude: -0.1278, City: "London"},
		CachedAt: time.Now().Add(-25 * time.Hour),
	}
	data, _ := json.Marshal(entry)
	_ = c.store.Set(ctx, geoKey, data, 0)

	if got := c.LoadGeo(ctx); got != nil {
		t.Error("expected nil for expired geo cache, got entry")
	}
}

// ---------------------------------------------------------------------------
// SaveCalendar / LoadCalendar round-trip
// ---------------------------------------------------------------------------

func sampleCalendarResponse(days int) *api.CalendarResponse {
	data := make([]api.Data, days)
	for i := range data {
		data[i] = sampleAPIResponse().Data
	}
	return &api.CalendarResponse{Code: 200, Status: "OK", Data: data}
}

func TestCalendar_RoundTrip(t *testing.T) {
	c, _ := newFileCache(t)
	ctx := context.Background()

	if err := c.SaveCalendar(ctx, 2026, time.February, london, sampleCalendarResponse(28)); err != nil {
		t.Fatalf("SaveCalendar error: %v", err)
	}

	entry := c.LoadCalendar(ctx, 2026, time.February, london)
	if entry == nil {
		t.Fatal("LoadCalendar returned nil after save")
	}
	if len(entry.Days) != 28 {
		t.Errorf("got %d days, want 28", len(entry.Days))
	}
	if c.LoadCalendar(ctx, 2026, time.March, london) != nil {
		t.Error("expected nil for a different month")
	}
	if c.LoadCalendar(ctx, 2027, time.February, london) != nil {
		t.Error("expected nil for a different year")
	}
}

// ---------------------------------------------------------------------------
// SaveRamadan / LoadRamadan round-trip
// ---------------------------------------------------------------------------

func TestRamadan_RoundTrip(t *testing.T) {
	c, _ := newFileCache(t)
	ctx := context.Background()

	zone := time.FixedZone("UTC+3", 3*3600)
	days := []ramadan.Day{
		{
			Index:    1,
			Date:     time.Date(2026, 2, 18, 0, 0, 0, 0, zone),
			Suhoor:   time.Date(2026, 2, 18, 5, 30, 0, 0, zone),
			Iftar:    time.Date(2026, 2, 18, 18, 20, 0, 0, zone),
			Duration: 12*time.Hour + 50*time.Minute,
		},
		{Index: 2, Date: time.Date(2026, 2, 19, 0, 0, 0, 0, zone)},
	}
	q := Query{Latitude: 21.4225, Longitude: 39.8262, Method: 3}
	r := ramadan.Range{Start: days[0].Date, End: days[1].Date}

	if err := c.SaveRamadan(ctx, 2026, r, q, days); err != nil {
		t.Fatalf("SaveRamadan error: %v", err)
	}

	got := c.LoadRamadan(ctx, 2026, r, q)
	if len(got) != 2 {
		t.Fatalf("got %d days, want 2", len(got))
	}
	if !got[0].Suhoor.Equal(days[0].Suhoor) || got[0].Duration != days[0].Duration {
		t.Errorf("day 1 = %+v", got[0])
	}
	if got[0].Suhoor.Format("15:04") != "05:30" {
		t.Errorf("suhoor lost its offset: %s", got[0].Suhoor)
	}
	if got[1].Available() {
		t.Error("unavailable day came back available")
	}
	if c.LoadRamadan(ctx, 2027, r, q) != nil {
		t.Error("expected nil for another year")
	}
}

func TestRamadan_CorrectedRangeMisses(t *testing.T) {
	c, _ := newFileCache(t)
	ctx := context.Background()
	q := Query{Latitude: 51.5074, Longitude: -0.1278, Method: 3}

	day := func(d int) time.Time { return time.Date(2026, 2, d, 0, 0, 0, 0, time.UTC) }
	old := ramadan.Range{Start: day(18), End: day(19)}
	days := []ramadan.Day{{Index: 1, Date: day(18)}, {Index: 2, Date: day(19)}}
	if err := c.SaveRamadan(ctx, 2026, old, q, days); err != nil {
		t.Fatalf("SaveRamadan error: %v", err)
	}

	// The new moon was sighted a day later than the table said.
	shifted := ramadan.Range{Start: day(19), End: day(20)}
	if got := c.LoadRamadan(ctx, 2026, shifted, q); got != nil {
		t.Errorf("shifted range returned the old schedule: %+v", got)
	}
	longer := ramadan.Range{Start: day(18), End: day(20)}
	if got := c.LoadRamadan(ctx, 2026, longer, q); got != nil {
		t.Errorf("longer range returned the old schedule: %+v", got)
	}
	if got := c.LoadRamadan(ctx, 2026, old, q); len(got) != 2 {
		t.Errorf("original range: got %d days, want 2", len(got))
	}
}

func TestRamadan_EntryForOtherDatesIsRejected(t *testing.T) {
	c, _ := newFileCache(t)
	ctx := context.Background()
	q := Query{Latitude: 51.5074, Longitude: -0.1278, Method: 3}

	day := func(d int) time.Time { return time.Date(2026, 2, d, 0, 0, 0, 0, time.UTC) }
	r := ramadan.Range{Start: day(18), End: day(19)}

	// An entry under the right key whose dates do not match it.
	data, err := json.Marshal(RamadanEntry{Year: 2026, Start: "2026-02-17", End: "2026-02-18", Days: make([]ramadan.Day, 2)})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.store.Set(ctx, q.key("ramadan", ramadanPeriod(2026, r)), data, time.Hour); err != nil {
		t.Fatal(err)
	}
	if got := c.LoadRamadan(ctx, 2026, r, q); got != nil {
		t.Errorf("mismatched entry returned: %+v", got)
	}
}
