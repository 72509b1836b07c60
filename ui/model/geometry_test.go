package model

import (
	"image"
	"testing"
	"time"
)

func TestParseGeometry(t *testing.T) {
	cases := []struct {
		in   string
		want image.Rectangle
		ok   bool
	}{
		{"800x600+10+20", image.Rect(10, 20, 810, 620), true},
		{" 640x480+-5+0 \n", image.Rect(-5, 0, 635, 480), true},
		{"0x600+10+20", image.Rectangle{}, false},
		{"800x600", image.Rectangle{}, false},
		{"", image.Rectangle{}, false},
	}
	for _, c := range cases {
		got, ok := ParseGeometry(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("ParseGeometry(%q)=%v,%v want %v,%v", c.in, got, ok, c.want, c.ok)
		}
	}
	r := image.Rect(-5, 7, 95, 57)
	if got, ok := ParseGeometry(FormatGeometry(r)); !ok || got != r {
		t.Fatalf("format/parse mismatch: %v", got)
	}
}

func TestParseSize(t *testing.T) {
	if w, h, ok := ParseSize("640", "480"); !ok || w != 640 || h != 480 {
		t.Fatalf("got %d,%d,%v", w, h, ok)
	}
	for _, c := range [][2]string{{"", "480"}, {"640", "??"}, {"0", "10"}, {"10", "-1"}} {
		if _, _, ok := ParseSize(c[0], c[1]); ok {
			t.Fatalf("ParseSize(%q,%q) accepted", c[0], c[1])
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	if got := FormatElapsed(125 * time.Second); got != "02:05" {
		t.Fatalf("got %q", got)
	}
	if got := FormatElapsed(-time.Second); got != "00:00" {
		t.Fatalf("got %q", got)
	}
}
