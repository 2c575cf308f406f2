package prayer

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{"ISNA", ISNA, false},
		{"isna", ISNA, false},
		{"  mwl ", MWL, false},
		{"Egypt", Egypt, false},
		{"MAKKAH", Makkah, false},
		{"karachi", Karachi, false},
		{"Tehran", Tehran, false},
		{"jafari", DefaultMethod, true},
		{"", DefaultMethod, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMethod(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownMethod) {
					t.Fatalf("ParseMethod(%q) error = %v, want ErrUnknownMethod", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMethod(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseMethod(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMethodParams(t *testing.T) {
	tests := []struct {
		method    Method
		fajr      float64
		isha      float64
		delay     float64
		alAdhanID int
	}{
		{ISNA, 15, 15, 0, 2},
		{MWL, 18, 17, 0, 3},
		{Egypt, 19.5, 17.5, 0, 5},
		{Makkah, 18.5, 0, 90, 4},
		{Karachi, 18, 18, 0, 1},
		{Tehran, 17.7, 14, 0, 7},
	}

	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			p := tt.method.Params()
			if p.FajrAngle != tt.fajr || p.IshaAngle != tt.isha || p.IshaDelay != tt.delay {
				t.Errorf("params = %+v", p)
			}
			if p.AlAdhanID != tt.alAdhanID {
				t.Errorf("AlAdhanID = %d, want %d", p.AlAdhanID, tt.alAdhanID)
			}
		})
	}

	if got := Makkah.Params().IshaDelayRamadan; got != 120 {
		t.Errorf("Makkah Ramadan delay = %v, want 120", got)
	}
}

func TestMethod_InvalidFallsBack(t *testing.T) {
	bad := Method(42)
	if bad.Valid() {
		t.Fatal("Method(42) should be invalid")
	}
	if bad.Params() != DefaultMethod.Params() {
		t.Error("invalid method should use default params")
	}
	if bad.String() != "Method(42)" {
		t.Errorf("String() = %q", bad.String())
	}
	if _, err := bad.MarshalText(); !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("MarshalText error = %v, want ErrUnknownMethod", err)
	}
}

func TestMethod_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Method Method `json:"method"`
	}{Tehran})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"method":"Tehran"}` {
		t.Errorf("marshal = %s", b)
	}

	var out struct {
		Method Method `json:"method"`
	}
	if err := json.Unmarshal([]byte(`{"method":"egypt"}`), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Method != Egypt {
		t.Errorf("unmarshal = %v, want Egypt", out.Method)
	}
	if err := json.Unmarshal([]byte(`{"method":"nope"}`), &out); err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestMethodTags(t *testing.T) {
	tags := MethodTags()
	if len(tags) != len(Methods()) {
		t.Fatalf("got %d tags for %d methods", len(tags), len(Methods()))
	}
	if tags[0] != "ISNA" {
		t.Errorf("first tag = %q, want ISNA", tags[0])
	}
}

func TestParseSchool(t *testing.T) {
	tests := []struct {
		in      string
		want    School
		wantErr bool
	}{
		{"", Shafi, false},
		{"shafi", Shafi, false},
		{"0", Shafi, false},
		{"Hanafi", Hanafi, false},
		{"1", Hanafi, false},
		{"maliki", Shafi, true},
	}

	for _, tt := range tests {
		got, err := ParseSchool(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSchool(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSchool(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if Shafi.ShadowFactor() != 1 || Hanafi.ShadowFactor() != 2 {
		t.Error("unexpected shadow factors")
	}
}

func TestParseHighLatitudeRule(t *testing.T) {
	for _, r := range []HighLatitudeRule{HighLatNone, HighLatMiddleOfNight, HighLatOneSeventh, HighLatAngleBased} {
		got, err := ParseHighLatitudeRule(r.String())
		if err != nil || got != r {
			t.Errorf("ParseHighLatitudeRule(%q) = %v, %v", r.String(), got, err)
		}
	}
	if got, err := ParseHighLatitudeRule(""); err != nil || got != HighLatNone {
		t.Errorf("empty rule = %v, %v; want none", got, err)
	}
	if _, err := ParseHighLatitudeRule("nearest-latitude"); err == nil {
		t.Error("expected error for unsupported rule")
	}
}

func TestHighLatitudePortion(t *testing.T) {
	tests := []struct {
		rule  HighLatitudeRule
		angle float64
		want  float64
	}{
		{HighLatMiddleOfNight, 18, 0.5},
		{HighLatOneSeventh, 18, 1.0 / 7.0},
		{HighLatAngleBased, 18, 0.3},
		{HighLatAngleBased, 15, 0.25},
	}
	for _, tt := range tests {
		if got := tt.rule.portion(tt.angle); got != tt.want {
			t.Errorf("%s.portion(%v) = %v, want %v", tt.rule, tt.angle, got, tt.want)
		}
	}
}
