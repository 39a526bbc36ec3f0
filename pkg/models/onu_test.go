package models

import "testing"

func TestFloatEqual(t *testing.T) {
	a, b, c := -18.5, -18.5, -19.0
	tests := []struct {
		name string
		x, y *float64
		want bool
	}{
		{"both nil", nil, nil, true},
		{"left nil", nil, &a, false},
		{"right nil", &a, nil, false},
		{"equal", &a, &b, true},
		{"different", &a, &c, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FloatEqual(tt.x, tt.y); got != tt.want {
				t.Errorf("FloatEqual = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseBrand(t *testing.T) {
	tests := map[string]Brand{
		"hioso":  BrandHioso,
		"HIOSO":  BrandHioso,
		" vsol ": BrandVSOL,
		"VSOL":   BrandVSOL,
		"zte":    BrandUnknown,
		"":       BrandUnknown,
	}
	for in, want := range tests {
		if got := ParseBrand(in); got != want {
			t.Errorf("ParseBrand(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestKey(t *testing.T) {
	r := OnuRecord{Pon: 2, OnuID: 9}
	if r.Key() != (OnuKey{Pon: 2, OnuID: 9}) {
		t.Errorf("record key = %v", r.Key())
	}
	s := OnuStatus{Pon: 1, OnuID: 4}
	if s.Key() != (OnuKey{Pon: 1, OnuID: 4}) {
		t.Errorf("status key = %v", s.Key())
	}
}
