package indicator

import (
	"errors"
	"testing"
)

func TestTracked(t *testing.T) {
	want := []struct {
		name string
		code string
	}{
		{"GDP growth (annual %)", "NY.GDP.MKTP.KD.ZG"},
		{"Inflation rate (CPI %)", "FP.CPI.TOTL.ZG"},
		{"Unemployment rate (%)", "SL.UEM.TOTL.ZS"},
		{"GDP (current US$)", "NY.GDP.MKTP.CD"},
	}

	got := Tracked()
	if len(got) != len(want) {
		t.Fatalf("Tracked() returned %d indicators, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Name != w.name || got[i].Code != w.code {
			t.Errorf("Tracked()[%d] = %s/%s, want %s/%s", i, got[i].Name, got[i].Code, w.name, w.code)
		}
	}
}

func TestTracked_ReturnsCopy(t *testing.T) {
	first := Tracked()
	first[0].Name = "mutated"

	if got := Tracked()[0].Name; got != GDPGrowth {
		t.Errorf("Tracked()[0].Name = %q after mutating a previous copy, want %q", got, GDPGrowth)
	}
}

func TestByCode(t *testing.T) {
	ind, ok := ByCode("fp.cpi.totl.zg")
	if !ok {
		t.Fatal("ByCode() did not find inflation indicator")
	}
	if ind.Name != Inflation {
		t.Errorf("ByCode() name = %q, want %q", ind.Name, Inflation)
	}

	if _, ok := ByCode("NOT.A.CODE"); ok {
		t.Error("ByCode() found an unknown code")
	}
}

func TestResolveCountry(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"India", "IND", false},
		{"  china ", "CHN", false},
		{"US", "USA", false},
		{"russia", "RUS", false},
		{"ind", "IND", false},
		{"br", "BR", false},
		{"DEU", "DEU", false},
		{"", "", true},
		{"X", "", true},
		{"Germany", "", true},
		{"12", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ResolveCountry(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownCountry) {
					t.Errorf("ResolveCountry(%q) error = %v, want ErrUnknownCountry", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveCountry(%q) returned unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ResolveCountry(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
