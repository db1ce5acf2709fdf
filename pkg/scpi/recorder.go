package scpi

import (
	"fmt"
	"sync"
)

// Call is one request seen by a Recorder.
type Call struct {
	Query bool
	Cmd   string
}

// Recorder is a scripted Transport that records every request in order.
// Queries without a scripted reply fail with ErrTimeout, like an instrument that
// ignores an unknown query.
type Recorder struct {
	mu      sync.Mutex
	calls   []Call
	replies map[string][][]byte
	errs    map[string]error
	closed  bool
	closes  int
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		replies: make(map[string][][]byte),
		errs:    make(map[string]error),
	}
}

// Reply queues a reply for cmd. Queued replies are consumed in order; the last one is
// repeated once the queue is drained.
func (r *Recorder) Reply(cmd string, reply string) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies[cmd] = append(r.replies[cmd], []byte(reply))
	return r
}

// Fail makes every request for cmd return err.
func (r *Recorder) Fail(cmd string, err error) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[cmd] = err
	return r
}

func (r *Recorder) Write(cmd string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	r.calls = append(r.calls, Call{Cmd: cmd})
	return r.errs[cmd]
}

func (r *Recorder) Query(cmd string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	r.calls = append(r.calls, Call{Query: true, Cmd: cmd})
	if err := r.errs[cmd]; err != nil {
		return nil, err
	}

	queue := r.replies[cmd]
	if len(queue) == 0 {
		return nil, fmt.Errorf("%w: no reply to %q", ErrTimeout, cmd)
	}
	reply := queue[0]
	if len(queue) > 1 {
		r.replies[cmd] = queue[1:]
	}
	out := make([]byte, len(reply))
	copy(out, reply)
	return out, nil
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closes++
	r.closed = true
	return nil
}

// Calls returns a copy of the recorded requests.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]Call, len(r.calls))
	copy(result, r.calls)
	return result
}

// Commands returns the recorded command text in order.
func (r *Recorder) Commands() []string {
	calls := r.Calls()
	result := make([]string, len(calls))
	for i, c := range calls {
		result[i] = c.Cmd
	}
	return result
}

// CloseCount returns how many times Close was called.
func (r *Recorder) CloseCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closes
}
