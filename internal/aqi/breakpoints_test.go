package aqi

import "testing"

func f(v float64) *float64 { return &v }

func TestIndexFromConcentrationKnownValues(t *testing.T) {
	tests := []struct {
		name string
		pm25 float64
		want int
	}{
		{"clean air", 0.0, 0},
		{"top of good", 12.0, 50},
		{"moderate", 20.0, 68},
		{"unhealthy for sensitive", 40.0, 112},
		{"hazardous ceiling", 500.4, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromPM25(f(tt.pm25))
			if !ok {
				t.Fatalf("expected an index for %.1f", tt.pm25)
			}
			if got != tt.want {
				t.Fatalf("FromPM25(%.1f) = %d, want %d", tt.pm25, got, tt.want)
			}
		})
	}
}

func TestIndexOutsideBrackets(t *testing.T) {
	if _, ok := FromPM25(f(600.0)); ok {
		t.Fatal("expected no index beyond the last bracket")
	}
	if _, ok := FromPM25(f(-1.0)); ok {
		t.Fatal("expected no index for negative concentration")
	}
	if _, ok := FromPM25(nil); ok {
		t.Fatal("expected no index for nil concentration")
	}
}

func TestIndexMonotonicAndBounded(t *testing.T) {
	prev := -1
	for c := 0.0; c <= 500.4; c += 0.5 {
		idx, ok := FromPM25(f(c))
		if !ok {
			// Gaps between brackets (e.g. 12.0..12.1) yield no index.
			continue
		}
		if idx < 0 || idx > 500 {
			t.Fatalf("index %d out of [0,500] at concentration %.1f", idx, c)
		}
		if idx < prev {
			t.Fatalf("index decreased from %d to %d at concentration %.1f", prev, idx, c)
		}
		prev = idx
	}
}

func TestCombinedIndex(t *testing.T) {
	if _, ok := CombinedIndex(nil, nil); ok {
		t.Fatal("combined index of two nils must be undefined")
	}

	// Single-pollutant combined index equals that pollutant's index.
	want, _ := FromPM25(f(40.0))
	got, ok := CombinedIndex(f(40.0), nil)
	if !ok || got != want {
		t.Fatalf("CombinedIndex(40, nil) = %d,%v want %d,true", got, ok, want)
	}

	// Worst pollutant wins.
	got, ok = CombinedIndex(f(10.0), f(200.0))
	if !ok {
		t.Fatal("expected a combined index")
	}
	pm10Only, _ := FromPM10(f(200.0))
	if got != pm10Only {
		t.Fatalf("combined = %d, want the PM10 sub-index %d", got, pm10Only)
	}
}

func TestScenarioPM25At40(t *testing.T) {
	// 40 µg/m³ falls in the 35.5-55.4 → 101-150 bracket:
	// round(((150-101)/(55.4-35.5))*(40-35.5)+101) = 112.
	got, ok := FromPM25(f(40.0))
	if !ok {
		t.Fatal("expected an index for 40 µg/m³")
	}
	if got <= 100 || got > 150 {
		t.Fatalf("index %d outside expected bracket (100,150]", got)
	}
	if got != 112 {
		t.Fatalf("FromPM25(40) = %d, want 112", got)
	}
}
