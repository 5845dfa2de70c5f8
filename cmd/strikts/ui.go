package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/uzzu/strikts/dotenv"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	dim   = color.New(color.Faint).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
)

func errorPrefix() string {
	return red("strikts:")
}

func colorLayer(layer dotenv.Layer) string {
	switch layer {
	case dotenv.LayerEnv:
		return green(layer.String())
	case dotenv.LayerFile:
		return cyan(layer.String())
	default:
		return red(layer.String())
	}
}

// formatElapsed renders d compactly: 42s, 3m07s, 2h05m. Sub-second
// durations keep millisecond precision.
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	secs := int64(d / time.Second)
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	if secs < 3600 {
		return fmt.Sprintf("%dm%02ds", secs/60, secs%60)
	}
	return fmt.Sprintf("%dh%02dm", secs/3600, (secs%3600)/60)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
