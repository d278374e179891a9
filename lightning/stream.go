package lightning

import (
	"context"
	"sync"
)

// Stream is a typed push source for one event category. The producer calls
// Send for every event and Finish exactly once when the underlying
// subscription ends. Events is closed after Finish; Err then reports nil for
// a clean end and the transport error otherwise. Streams are never restarted.
type Stream[T any] struct {
	events chan T
	closed chan struct{}

	mu  sync.Mutex
	err error

	closeOnce sync.Once
	cancel    context.CancelFunc
}

// NewStream creates a stream. cancel, if not nil, is invoked by Close to tear
// down the producer.
func NewStream[T any](cancel context.CancelFunc) *Stream[T] {
	return &Stream[T]{
		events: make(chan T),
		closed: make(chan struct{}),
		cancel: cancel,
	}
}

func (s *Stream[T]) Events() <-chan T {
	return s.events
}

func (s *Stream[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the producer. Events still drain to Finish.
func (s *Stream[T]) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// Send blocks until the consumer takes v. It returns false if the stream was
// closed or ctx is done.
func (s *Stream[T]) Send(ctx context.Context, v T) bool {
	select {
	case s.events <- v:
		return true
	case <-s.closed:
		return false
	case <-ctx.Done():
		return false
	}
}

func (s *Stream[T]) Finish(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	close(s.events)
}

// Filter derives a stream carrying only the events keep accepts. Closing the
// derived stream closes in.
func Filter[T any](in *Stream[T], keep func(T) bool) *Stream[T] {
	out := NewStream[T](in.Close)
	go func() {
		for ev := range in.Events() {
			if !keep(ev) {
				continue
			}
			if !out.Send(context.Background(), ev) {
				in.Close()
				for range in.Events() {
				}
				break
			}
		}
		out.Finish(in.Err())
	}()
	return out
}
