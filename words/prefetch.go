package words

import "sync"

// supplier is the blocking source a Prefetched pool draws from.
type supplier interface {
	RandomWords(count int, excluding map[string]struct{}) []string
}

// Prefetched keeps a buffer of candidate words topped up by a background
// goroutine, so callers on latency-sensitive goroutines never wait on the
// underlying source. RandomWords serves whatever the buffer holds right now
// and returns short when that is not enough.
type Prefetched struct {
	src    supplier
	buf    chan string
	refill chan struct{}
	done   chan struct{}
	once   sync.Once
}

func NewPrefetched(src supplier, capacity int) *Prefetched {
	p := &Prefetched{
		src:    src,
		buf:    make(chan string, capacity),
		refill: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go p.fill()
	p.kick()
	return p
}

// Close stops the refill goroutine.
func (p *Prefetched) Close() {
	p.once.Do(func() { close(p.done) })
}

func (p *Prefetched) kick() {
	select {
	case p.refill <- struct{}{}:
	default:
	}
}

func (p *Prefetched) fill() {
	for {
		select {
		case <-p.done:
			return
		case <-p.refill:
		}
		for len(p.buf) < cap(p.buf) {
			batch := p.src.RandomWords(cap(p.buf)-len(p.buf), nil)
			if len(batch) == 0 {
				// source dry or failing; try again on the next kick
				break
			}
			for _, w := range batch {
				select {
				case p.buf <- w:
				case <-p.done:
					return
				}
			}
		}
	}
}

// RandomWords returns up to count distinct words from the buffer without ever
// blocking. Buffered words in the exclusion set are discarded; the refill
// replaces them.
func (p *Prefetched) RandomWords(count int, excluding map[string]struct{}) []string {
	out := make([]string, 0, count)
	picked := make(map[string]struct{}, count)
	for len(out) < count {
		select {
		case w := <-p.buf:
			if _, used := excluding[w]; used {
				continue
			}
			if _, dup := picked[w]; dup {
				continue
			}
			out = append(out, w)
			picked[w] = struct{}{}
		default:
			p.kick()
			return out
		}
	}
	p.kick()
	return out
}
