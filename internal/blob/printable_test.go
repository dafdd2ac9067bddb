package blob

import (
	"reflect"
	"testing"
)

func TestExtract_Runs(t *testing.T) {
	in := []byte("\x00abc\x01de\x02  fgh  \x03tail")
	got := Strings(in, 3)
	want := []string{"abc", "fgh", "tail"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Strings = %q, want %q", got, want)
	}
}

func TestExtract_DefaultMinRun(t *testing.T) {
	got := Strings([]byte("ab\x00abc"), 0)
	if len(got) != 1 || got[0] != "abc" {
		t.Fatalf("Strings = %q, want [abc]", got)
	}
}

func TestExtract_TrimmedRunBelowMinimumIsDropped(t *testing.T) {
	got := Strings([]byte("\x00   a   \x00"), 3)
	if len(got) != 0 {
		t.Fatalf("Strings = %q, want none", got)
	}
}

func TestExtract_NonASCIITerminatesRun(t *testing.T) {
	got := Strings([]byte("caf\xc3\xa9 latte"), 3)
	want := []string{"caf", "latte"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Strings = %q, want %q", got, want)
	}
}

func TestExtract_EarlyStop(t *testing.T) {
	n := 0
	for range Extract([]byte("one\x00two\x00three"), 3) {
		n++
		break
	}
	if n != 1 {
		t.Fatalf("iterations = %d, want 1", n)
	}
}

func TestExtract_Empty(t *testing.T) {
	if got := Strings(nil, 3); len(got) != 0 {
		t.Fatalf("Strings(nil) = %q", got)
	}
}
