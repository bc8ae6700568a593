package utils

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	if got := Mean([]float64{10, 20, 30}); got != 20 {
		t.Fatalf("expected mean 20, got %f", got)
	}
	if got := Mean(nil); got != 0 {
		t.Fatalf("expected mean of empty slice to be 0, got %f", got)
	}
}

func TestVarianceAndStdDev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := Variance(values); math.Abs(got-4.0) > 1e-9 {
		t.Fatalf("expected variance 4.0, got %f", got)
	}
	if got := StdDev(values); math.Abs(got-2.0) > 1e-9 {
		t.Fatalf("expected stddev 2.0, got %f", got)
	}
}

func TestSum(t *testing.T) {
	if got := Sum([]float64{1.5, 2.5, 3}); got != 7 {
		t.Fatalf("expected sum 7, got %f", got)
	}
}

func TestClampFloat64(t *testing.T) {
	cases := []struct {
		value, min, max, want float64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
	}
	for _, tc := range cases {
		if got := ClampFloat64(tc.value, tc.min, tc.max); got != tc.want {
			t.Fatalf("ClampFloat64(%f, %f, %f) = %f, want %f", tc.value, tc.min, tc.max, got, tc.want)
		}
	}
}

func TestPercentile(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i + 1)
	}

	if got := Percentile(values, 50); got < 50.0 || got > 51.0 {
		t.Fatalf("expected P50 around 50.5, got %f", got)
	}
	if got := Percentile(values, 95); got < 95.0 || got > 96.0 {
		t.Fatalf("expected P95 around 95.5, got %f", got)
	}
	if got := Percentile(nil, 50); got != 0 {
		t.Fatalf("expected percentile of empty slice to be 0, got %f", got)
	}
}
