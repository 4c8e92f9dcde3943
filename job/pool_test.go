package job

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mnishina/avif-converter/models"
)

func fakeJobs(n int) []models.Job {
	jobs := make([]models.Job, 0, n)
	for i := 0; i < n; i++ {
		jobs = append(jobs, models.Job{InputPath: fmt.Sprintf("file-%03d", i)})
	}
	return jobs
}

func echoExec(ctx context.Context, j models.Job) models.Result {
	return models.Result{InputPath: j.InputPath}
}

func TestRunProducesOneResultPerJob(t *testing.T) {
	jobs := fakeJobs(25)
	results := Run(context.Background(), jobs, 4, echoExec, nil)

	if len(results) != len(jobs) {
		t.Fatalf("Expected %d results, got %d", len(jobs), len(results))
	}
	seen := map[string]int{}
	for _, r := range results {
		seen[r.InputPath]++
	}
	for _, j := range jobs {
		if seen[j.InputPath] != 1 {
			t.Errorf("Expected exactly one result for %s, got %d", j.InputPath, seen[j.InputPath])
		}
	}
}

func TestRunNoJobs(t *testing.T) {
	done := make(chan []models.Result, 1)
	go func() {
		done <- Run(context.Background(), nil, 4, echoExec, nil)
	}()
	select {
	case results := <-done:
		if len(results) != 0 {
			t.Errorf("Expected no results, got %d", len(results))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected immediate completion with no jobs")
	}
}

func TestRunHonorsWorkerCap(t *testing.T) {
	const workers = 3
	var inFlight, peak atomic.Int32

	exec := func(ctx context.Context, j models.Job) models.Result {
		cur := inFlight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return models.Result{InputPath: j.InputPath}
	}

	Run(context.Background(), fakeJobs(24), workers, exec, nil)
	if got := peak.Load(); got > workers {
		t.Errorf("Expected at most %d jobs in flight, saw %d", workers, got)
	}
}

func TestRunSingleWorkerKeepsOrder(t *testing.T) {
	var order []string
	exec := func(ctx context.Context, j models.Job) models.Result {
		order = append(order, j.InputPath)
		return models.Result{InputPath: j.InputPath}
	}

	jobs := fakeJobs(10)
	Run(context.Background(), jobs, 1, exec, nil)

	if len(order) != len(jobs) {
		t.Fatalf("Expected %d executions, got %d", len(jobs), len(order))
	}
	for i, j := range jobs {
		if order[i] != j.InputPath {
			t.Fatalf("Expected jobs handed out in input order, got %v", order)
		}
	}
}

func TestRunResultHookIsSerialized(t *testing.T) {
	var inHook, overlaps atomic.Int32
	var collected []string // plain slice, safe only if the hook never overlaps itself

	hook := func(r models.Result) {
		if inHook.Add(1) > 1 {
			overlaps.Add(1)
		}
		collected = append(collected, r.InputPath)
		inHook.Add(-1)
	}

	Run(context.Background(), fakeJobs(50), 8, echoExec, hook)

	if overlaps.Load() != 0 {
		t.Errorf("Expected the result hook to never run concurrently, saw %d overlaps", overlaps.Load())
	}
	if len(collected) != 50 {
		t.Errorf("Expected 50 hook calls, got %d", len(collected))
	}
}

func TestRunCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := Run(ctx, fakeJobs(10), 4, echoExec, nil)
	if len(results) != 0 {
		t.Errorf("Expected no jobs attempted after cancellation, got %d results", len(results))
	}
}

func TestRunMoreWorkersThanJobs(t *testing.T) {
	results := Run(context.Background(), fakeJobs(2), 50, echoExec, nil)
	if len(results) != 2 {
		t.Errorf("Expected 2 results, got %d", len(results))
	}
}
