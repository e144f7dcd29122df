package stats

import (
	"testing"

	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

func TestFormatPercent(t *testing.T) {
	v := 55.0
	third := 100.0 / 3
	tests := []struct {
		name string
		in   *float64
		want string
	}{
		{"no data", nil, "N/A"},
		{"whole", &v, "55.0%"},
		{"fraction", &third, "33.3%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPercent(tt.in); got != tt.want {
				t.Errorf("FormatPercent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatTurn(t *testing.T) {
	v := 6.0
	if got := FormatTurn(&v); got != "6.0 T" {
		t.Errorf("FormatTurn() = %q, want %q", got, "6.0 T")
	}
	if got := FormatTurn(nil); got != "N/A" {
		t.Errorf("FormatTurn(nil) = %q, want N/A", got)
	}
}

func TestFormatAppearances(t *testing.T) {
	if got := FormatAppearances(12, 5); got != "12 (first: 5)" {
		t.Errorf("FormatAppearances() = %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(datePtr("2024-02-09")); got != "2024-02-09" {
		t.Errorf("FormatDate() = %q", got)
	}
	if got := FormatDate(nil); got != "" {
		t.Errorf("FormatDate(nil) = %q, want empty", got)
	}
}

func TestKeyLabel(t *testing.T) {
	tests := []struct {
		key  models.ArchetypeKey
		want string
	}{
		{models.AllTypesOf("Alpha"), "Alpha"},
		{models.TypedKey("Alpha", "Red"), "Alpha (Red)"},
		{models.TypedKey("Alpha", ""), "Alpha"},
		{models.ParseArchetypeKey("Alpha", models.AllTypesLabel), "Alpha"},
	}

	for _, tt := range tests {
		if got := KeyLabel(tt.key); got != tt.want {
			t.Errorf("KeyLabel(%+v) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
