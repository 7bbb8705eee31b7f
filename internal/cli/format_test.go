package cli

import (
	"testing"

	"tally/internal/core"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{1250, "$12.50"},
		{-1250, "-$12.50"},
		{123456789, "$1,234,567.89"},
		{-100, "-$1.00"},
	}

	for _, tt := range tests {
		if got := FormatMoney(core.Money{Cents: tt.cents}); got != tt.want {
			t.Errorf("FormatMoney(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}

	for _, tt := range tests {
		if got := FormatNumber(tt.n); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate(short, 10) = %q", got)
	}
	if got := Truncate("a longer string", 8); got != "a longe…" {
		t.Errorf("Truncate = %q", got)
	}
}

func TestRenderHorizontalBar(t *testing.T) {
	if got := RenderHorizontalBar(50, 100, 10); got != "█████░░░░░" {
		t.Errorf("RenderHorizontalBar = %q", got)
	}
	if got := RenderHorizontalBar(200, 100, 4); got != "████" {
		t.Errorf("overflow bar = %q", got)
	}
	if got := RenderHorizontalBar(1, 0, 4); got != "" {
		t.Errorf("zero max bar = %q", got)
	}
}
