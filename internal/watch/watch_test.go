package watch

import (
	"errors"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestRun_NoRoots(t *testing.T) {
	err := Run(nil, time.Second, func() error {
		t.Fatal("render must not run without roots")
		return nil
	})
	if err == nil {
		t.Fatal("expected error when nothing can be watched")
	}
}

func TestRun_InitialRenderErrorPropagates(t *testing.T) {
	want := errors.New("render failed")
	err := Run([]string{t.TempDir()}, time.Second, func() error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("got %v, want %v", err, want)
	}
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		op   fsnotify.Op
		want bool
	}{
		{fsnotify.Create, true},
		{fsnotify.Write, true},
		{fsnotify.Create | fsnotify.Write, true},
		{fsnotify.Remove, false},
		{fsnotify.Chmod, false},
		{fsnotify.Rename, false},
	}
	for _, tt := range tests {
		if got := relevant(fsnotify.Event{Op: tt.op}); got != tt.want {
			t.Errorf("relevant(%v) = %v, want %v", tt.op, got, tt.want)
		}
	}
}
