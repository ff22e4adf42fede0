package ui

import (
	"testing"

	"github.com/fatih/color"
)

func TestInitColorsRespectsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	defer func() { color.NoColor = false }()

	InitColors()
	if !color.NoColor {
		t.Error("NO_COLOR=1 should disable colors")
	}
}

func TestProgressBarObserve(t *testing.T) {
	bar := NewProgressBarBytes(-1, "downloading")
	bar.Observe(512, 1024)
	bar.Observe(1024, 1024)
	if err := bar.Finish(); err != nil {
		t.Errorf("Finish() error: %v", err)
	}
}

func TestIndeterminateProgressBar(t *testing.T) {
	bar := NewIndeterminateProgressBar("provisioning")
	bar.Describe("still provisioning")
	if err := bar.Clear(); err != nil {
		t.Errorf("Clear() error: %v", err)
	}
}
