package dma

import "sync"

// A job asks the worker to run the transfer that starts at a channel.
type job struct {
	channel uint32
	chain   uint64
}

// workQueue is a FIFO of jobs consumed by a single worker.
type workQueue struct {
	lock   sync.Mutex
	cond   *sync.Cond
	jobs   []job
	busy   bool
	closed bool
}

func newWorkQueue() *workQueue {
	q := &workQueue{}
	q.cond = sync.NewCond(&q.lock)

	return q
}

// submit appends a job. It returns false if the queue is closed.
func (q *workQueue) submit(j job) bool {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.closed {
		return false
	}

	q.jobs = append(q.jobs, j)
	q.cond.Broadcast()

	return true
}

// next blocks until a job is available. It returns false once the queue is
// closed and drained.
func (q *workQueue) next() (job, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()

	for len(q.jobs) == 0 && !q.closed {
		q.cond.Wait()
	}

	if len(q.jobs) == 0 {
		return job{}, false
	}

	j := q.jobs[0]
	q.jobs = q.jobs[1:]
	q.busy = true

	return j, true
}

// done marks the job returned by the last next as finished.
func (q *workQueue) done() {
	q.lock.Lock()
	defer q.lock.Unlock()

	q.busy = false
	q.cond.Broadcast()
}

// waitIdle blocks until no job is queued or running.
func (q *workQueue) waitIdle() {
	q.lock.Lock()
	defer q.lock.Unlock()

	for len(q.jobs) > 0 || q.busy {
		q.cond.Wait()
	}
}

func (q *workQueue) idle() bool {
	q.lock.Lock()
	defer q.lock.Unlock()

	return len(q.jobs) == 0 && !q.busy
}

func (q *workQueue) close() {
	q.lock.Lock()
	defer q.lock.Unlock()

	q.closed = true
	q.cond.Broadcast()
}
