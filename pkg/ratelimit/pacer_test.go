package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestPacerNoDelay(t *testing.T) {
	pacer := NewPacer(0, 0, 0)

	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := pacer.Wait(context.Background()); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Expected no pacing, took %v", elapsed)
	}
	if pacer.Count() != 100 {
		t.Errorf("Expected count 100, got %d", pacer.Count())
	}
}

func TestPacerSpacesRequests(t *testing.T) {
	pacer := NewPacer(20*time.Millisecond, 0, 0)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := pacer.Wait(context.Background()); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	}

	// Burst of one: the second and third waits each pay the delay
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Expected at least 40ms of pacing, took %v", elapsed)
	}
}

func TestPacerBatchPause(t *testing.T) {
	pacer := NewPacer(0, 50*time.Millisecond, 2)

	start := time.Now()
	for i := 0; i < 2; i++ {
		if err := pacer.Wait(context.Background()); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	}

	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Expected batch pause after second wait, took %v", elapsed)
	}
}

func TestPacerBatchPauseDisabled(t *testing.T) {
	pacer := NewPacer(0, time.Minute, 0)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			pacer.Wait(context.Background())
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expected waits to return immediately with pauses disabled")
	}
}

func TestPacerContextCancellation(t *testing.T) {
	pacer := NewPacer(time.Minute, 0, 0)

	// First wait passes immediately, the second would block a minute
	if err := pacer.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := pacer.Wait(ctx); err == nil {
		t.Error("Expected context error from blocked wait")
	}
}

func TestPacerContextCancellationDuringPause(t *testing.T) {
	pacer := NewPacer(0, time.Minute, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := pacer.Wait(ctx); err == nil {
		t.Error("Expected context error from batch pause")
	}
}
