package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerDrawsAndClears(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(context.Background(), &buf, "Resolving 3 packages from npm...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Resolving 3 packages from npm...") {
		t.Errorf("spinner output missing message: %q", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("spinner should end by clearing its line: %q", out)
	}
	if s.Cancelled() {
		t.Error("Stop() is not a cancellation")
	}
}

func TestSpinnerSetMessage(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(context.Background(), &buf, "Resolving 0/2 packages")
	s.Start()
	s.SetMessage("Resolving %d/%d packages", 2, 2)
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !strings.Contains(buf.String(), "Resolving 2/2 packages") {
		t.Errorf("updated message not drawn: %q", buf.String())
	}
}

func TestSpinnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(ctx, &bytes.Buffer{}, "Resolving...")
	s.Start()
	cancel()
	s.Stop()

	if !s.Cancelled() {
		t.Error("spinner should report cancellation of its parent context")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner(context.Background(), &bytes.Buffer{}, "Resolving...")
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(context.Background(), &buf, "Resolving...")
	s.Stop()
	if buf.Len() != 0 {
		t.Errorf("unstarted spinner wrote %q", buf.String())
	}
}
