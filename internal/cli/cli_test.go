package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/tripbudget/internal/model"
)

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{5000, "$5,000"},
		{12.5, "$12.50"},
		{1234567.891, "$1,234,567.89"},
		{-120, "-$120"},
		{0.005, "$0.01"},
	}
	for _, tt := range tests {
		if got := FormatUSD(tt.in); got != tt.want {
			t.Errorf("FormatUSD(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSignedUSD(t *testing.T) {
	if got := FormatSignedUSD(2480); got != "+$2,480" {
		t.Errorf("got %q", got)
	}
	if got := FormatSignedUSD(-2420); got != "-$2,420" {
		t.Errorf("got %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4321, "-4,321"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCounts(t *testing.T) {
	if FormatDays(1) != "1 day" || FormatDays(7) != "7 days" {
		t.Errorf("FormatDays: %q %q", FormatDays(1), FormatDays(7))
	}
	if FormatTravelers(1) != "1 traveler" || FormatTravelers(2) != "2 travelers" {
		t.Errorf("FormatTravelers: %q %q", FormatTravelers(1), FormatTravelers(2))
	}
	if FormatPercent(0.25) != "25.0%" {
		t.Errorf("FormatPercent(0.25) = %q", FormatPercent(0.25))
	}
}

func TestRenderHorizontalBar(t *testing.T) {
	got := RenderHorizontalBar("Stay", 50, 100, 10)
	if !strings.Contains(got, "Stay") || strings.Count(got, "█") != 5 {
		t.Errorf("RenderHorizontalBar = %q", got)
	}
	if got := RenderHorizontalBar("Stay", 500, 100, 10); strings.Count(got, "█") != 10 {
		t.Errorf("bar should clamp to width, got %q", got)
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Errorf("empty table rendered %q", got)
	}
}

func TestRenderPlan(t *testing.T) {
	p := model.TripPlan{
		ID: "trip_1",
		TripRequest: model.TripRequest{
			Destination: "Paris, France",
			Budget:      100,
			Duration:    7,
			People:      2,
			Month:       model.Month(time.June),
		},
		Breakdown: model.ExpenseBreakdown{
			Travel: 700, Stay: 560, Food: 560, Activities: 420, Miscellaneous: 280,
		},
		TotalEstimated:   2520,
		ExtraRequired:    2420,
		AIRecommendation: "line one\nline two",
	}

	out := RenderPlan(p)
	for _, want := range []string{
		"Paris, France", "June", "7 days", "2 travelers", "$2,520", "$360",
		"Travel", "Miscellaneous", "27.8%", "Budget is insufficient", "$2,420 more needed",
		"line one", "line two", "-$2,420", "Budget used", "2520.0%",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderPlan output missing %q", want)
		}
	}

	p.Budget = 5000
	p.IsSufficient = true
	p.ExtraRequired = 0
	if s := RenderStatus(p); !strings.Contains(s, "$2,480 remaining") {
		t.Errorf("RenderStatus = %q", s)
	}
}
