package corrector

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// CorrectAll corrects every line on a bounded worker pool. Results keep the
// input order. Cancelling ctx stops submitting new lines.
func (c *Corrector) CorrectAll(ctx context.Context, lines []string, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	results := make([]Result, len(lines))
	var wg sync.WaitGroup

	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}

		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			results[i] = c.Correct(line)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("failed to submit line %d: %w", i+1, err)
		}
	}

	wg.Wait()
	return results, nil
}
