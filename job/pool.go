package job

import (
	"context"
	"sync"

	"github.com/mnishina/avif-converter/models"
)

// Run drives jobs through a fixed pool of workers. At most workers jobs are
// in flight at any moment; jobs are handed out in slice order and results
// come back in completion order. onResult, if non-nil, runs on the
// collecting goroutine only, once per result, before the result is kept.
//
// A done context stops the handout; workers finish what they started and
// Run returns the results collected so far.
func Run(ctx context.Context, jobs []models.Job, workers int, exec func(context.Context, models.Job) models.Result, onResult func(models.Result)) []models.Result {
	results := make([]models.Result, 0, len(jobs))
	if len(jobs) == 0 {
		return results
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	jobCh := make(chan models.Job)
	resCh := make(chan models.Result)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				resCh <- exec(ctx, j)
			}
		}()
	}

	go func() {
		defer close(jobCh)
		for _, j := range jobs {
			// the select alone could still pick the send over a done context
			if ctx.Err() != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case jobCh <- j:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resCh)
	}()

	for r := range resCh {
		if onResult != nil {
			onResult(r)
		}
		results = append(results, r)
	}
	return results
}
