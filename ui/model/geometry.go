package model

import (
	"fmt"
	"image"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// geometryRe matches Tk window geometry strings in the format "WIDTHxHEIGHT+X+Y".
var geometryRe = regexp.MustCompile(`^(\d+)x(\d+)\+(-?\d+)\+(-?\d+)$`)

// ParseGeometry converts a Tk geometry string into a screen rectangle.
func ParseGeometry(g string) (image.Rectangle, bool) {
	m := geometryRe.FindStringSubmatch(strings.TrimSpace(g))
	if len(m) != 5 {
		return image.Rectangle{}, false
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	x, _ := strconv.Atoi(m[3])
	y, _ := strconv.Atoi(m[4])
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(x, y, x+w, y+h), true
}

// ParseSize converts the width and height fields of a Tk <Configure> event.
func ParseSize(w, h string) (int, int, bool) {
	wi, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil || wi <= 0 {
		return 0, 0, false
	}
	hi, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || hi <= 0 {
		return 0, 0, false
	}
	return wi, hi, true
}

// FormatGeometry is the inverse of ParseGeometry.
func FormatGeometry(r image.Rectangle) string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Dx(), r.Dy(), r.Min.X, r.Min.Y)
}

// FormatElapsed renders d as mm:ss.
func FormatElapsed(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
