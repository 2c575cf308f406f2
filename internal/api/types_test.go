package api

import "testing"

func TestHijriDate_Format(t *testing.T) {
	tests := []struct {
		name string
		h    HijriDate
		want string
	}{
		{
			name: "full date",
			h: HijriDate{
				Day:         "10",
				Month:       HijriMonth{Number: 8, En: "Sha'ban"},
				Year:        "1447",
				Designation: HijriDesignation{Abbreviated: "AH"},
			},
			want: "10 Sha'ban 1447 AH",
		},
		{
			name: "missing abbreviated defaults to AH",
			h: HijriDate{
				Day:   "1",
				Month: HijriMonth{Number: 1, En: "Muharram"},
				Year:  "1448",
			},
			want: "1 Muharram 1448 AH",
		},
		{
			name: "empty day returns empty",
			h: HijriDate{
				Month: HijriMonth{En: "Ramadan"},
				Year:  "1447",
			},
			want: "",
		},
		{
			name: "empty month returns empty",
			h: HijriDate{
				Day:  "15",
				Year: "1447",
			},
			want: "",
		},
		{
			name: "empty year returns empty",
			h: HijriDate{
				Day:   "15",
				Month: HijriMonth{En: "Ramadan"},
			},
			want: "",
		},
		{
			name: "all empty returns empty",
			h:    HijriDate{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.h.Format()
			if got != tt.want {
				t.Errorf("HijriDate.Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTimings_Clock(t *testing.T) {
	timings := Timings{Fajr: "05:17", Sunrise: "06:48", Isha: "19:10 (GMT)", Lastthird: "02:25"}

	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"Fajr", "05:17", true},
		{"Sunrise", "06:48", true},
		{"Isha", "19:10 (GMT)", true},
		{"Lastthird", "02:25", true},
		{"Maghrib", "", true},
		{"fajr", "", false},
		{"Tahajjud", "", false},
	}
	for _, tt := range tests {
		got, ok := timings.Clock(tt.name)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Clock(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestMeta_Coordinate(t *testing.T) {
	m := Meta{Latitude: 51.5074, Longitude: -0.1278}
	c := m.Coordinate()
	if c.Latitude != 51.5074 || c.Longitude != -0.1278 {
		t.Errorf("Coordinate() = %+v", c)
	}
	if !(Meta{}).Coordinate().IsZero() {
		t.Error("empty meta should give the zero coordinate")
	}
}

func TestMeta_Location(t *testing.T) {
	tz, err := Meta{Timezone: "UTC"}.Location()
	if err != nil {
		t.Fatalf("Location() error: %v", err)
	}
	if tz.String() != "UTC" {
		t.Errorf("Location() = %s, want UTC", tz)
	}

	if _, err := (Meta{}).Location(); err == nil {
		t.Error("expected an error for a missing timezone")
	}
	if _, err := (Meta{Timezone: "Mars/Olympus_Mons"}).Location(); err == nil {
		t.Error("expected an error for an unknown timezone")
	}
}
