package debug

import "testing"

func TestReadSample(t *testing.T) {
	s := Read()
	if s.Goroutines == 0 {
		t.Fatalf("goroutines=0")
	}
	if s.HeapAlloc == 0 {
		t.Fatalf("heap_alloc=0")
	}
}
