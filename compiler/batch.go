package compiler

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/Mi-Lis/MLCanvas/graph"
)

type batchTask struct {
	idx int
	doc *graph.Document
}

// BuildAll compiles several snapshot documents concurrently on a
// goroutine pool. Results keep the input order. poolSize <= 0 selects
// one worker per CPU. Each document is independent, so workers never
// share state beyond their own result slot.
func BuildAll(docs []*graph.Document, poolSize int) ([]BuildResult, error) {
	if poolSize <= 0 {
		poolSize = runtime.NumCPU()
	}
	results := make([]BuildResult, len(docs))
	var wg sync.WaitGroup

	pool, err := ants.NewPoolWithFunc(poolSize, func(args any) {
		defer wg.Done()
		t, ok := args.(*batchTask)
		if !ok {
			panic("batch build pool args type error")
		}
		results[t.idx] = Build(t.doc)
	})
	if err != nil {
		return nil, fmt.Errorf("create build pool: %w", err)
	}
	defer pool.Release()

	for i, doc := range docs {
		wg.Add(1)
		if err := pool.Invoke(&batchTask{idx: i, doc: doc}); err != nil {
			wg.Done()
			results[i] = BuildResult{OK: false, Errors: []string{fmt.Sprintf("build not scheduled: %v", err)}}
		}
	}
	wg.Wait()
	return results, nil
}
