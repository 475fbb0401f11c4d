package grading

import "sync"

// Job is a unit of work run by a Pool.
type Job[T any] func() T

// JobResult pairs a job's output with the id it was submitted under.
type JobResult[T any] struct {
	JobID  string
	Output T
}

// Pool runs jobs on a fixed number of goroutines.
type Pool[T any] struct {
	jobs    chan jobWrapper[T]
	results chan JobResult[T]
	wg      sync.WaitGroup
}

type jobWrapper[T any] struct {
	id string
	fn Job[T]
}

// NewPool starts workerCount workers. Submit blocks once bufferSize jobs
// are queued, and workers block once bufferSize results are unread.
func NewPool[T any](workerCount int, bufferSize int) *Pool[T] {
	if workerCount < 1 {
		workerCount = 1
	}
	p := &Pool[T]{
		jobs:    make(chan jobWrapper[T], bufferSize),
		results: make(chan JobResult[T], bufferSize),
	}

	p.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go p.worker()
	}
	go func() {
		p.wg.Wait()
		close(p.results)
	}()

	return p
}

func (p *Pool[T]) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.results <- JobResult[T]{JobID: job.id, Output: job.fn()}
	}
}

func (p *Pool[T]) Submit(id string, fn Job[T]) {
	p.jobs <- jobWrapper[T]{id: id, fn: fn}
}

// Close stops accepting jobs. Results is closed after the last job finishes.
func (p *Pool[T]) Close() {
	close(p.jobs)
}

func (p *Pool[T]) Results() <-chan JobResult[T] {
	return p.results
}
