package flow

import "sync"

// Subscription receives the values of a state holder: the latest value at the
// time of subscribing, then every later value exactly once and in order.
// Values are queued per subscription, so a slow reader never loses updates.
type Subscription[T any] struct {
	mu      sync.Mutex
	pending []T
	ended   bool

	notify chan struct{}
	out    chan T
	done   chan struct{}

	closeOnce sync.Once
	onClose   func()
}

func newSubscription[T any](first T, onClose func()) *Subscription[T] {
	s := &Subscription[T]{
		pending: []T{first},
		notify:  make(chan struct{}, 1),
		out:     make(chan T),
		done:    make(chan struct{}),
		onClose: onClose,
	}
	s.notify <- struct{}{}
	go s.pump()
	return s
}

// C returns the delivery channel. It is closed after Close, or once the
// holder has been closed and every queued value was delivered.
func (s *Subscription[T]) C() <-chan T {
	return s.out
}

// Close detaches the subscription. Queued values are dropped.
func (s *Subscription[T]) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.onClose != nil {
			s.onClose()
		}
	})
}

func (s *Subscription[T]) push(v T) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.pending = append(s.pending, v)
	s.mu.Unlock()
	s.wake()
}

// end stops accepting values; the pump drains what is queued and closes C.
func (s *Subscription[T]) end() {
	s.mu.Lock()
	s.ended = true
	s.mu.Unlock()
	s.wake()
}

func (s *Subscription[T]) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Subscription[T]) next() (v T, ok bool, ended bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return v, false, s.ended
	}
	v = s.pending[0]
	var zero T
	s.pending[0] = zero
	s.pending = s.pending[1:]
	return v, true, false
}

func (s *Subscription[T]) pump() {
	defer close(s.out)
	for {
		select {
		case <-s.done:
			return
		case <-s.notify:
		}
		for {
			v, ok, ended := s.next()
			if ended {
				return
			}
			if !ok {
				break
			}
			select {
			case s.out <- v:
			case <-s.done:
				return
			}
		}
	}
}
