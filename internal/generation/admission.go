package generation

import (
	"context"
	"time"
)

// gate admits generations on one loaded model: a bounded FIFO queue in
// front of a single in-flight slot.
type gate struct {
	genCh   chan struct{} // size 1: single in-flight generation
	queueCh chan struct{} // buffered: queue slots
	maxWait time.Duration
}

func newGate(depth int, maxWait time.Duration) *gate {
	return &gate{
		genCh:   make(chan struct{}, 1),
		queueCh: make(chan struct{}, depth),
		maxWait: maxWait,
	}
}

// enter reserves a queue slot and then the in-flight slot. The returned
// release func must be called exactly once on success.
func (g *gate) enter(ctx context.Context, name string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}

	timer := time.NewTimer(g.maxWait)
	defer timer.Stop()
	select {
	case g.queueCh <- struct{}{}:
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		return func() {}, tooBusyError{model: name, stage: BusyQueue}
	}

	acquired := false
	defer func() {
		if !acquired {
			<-g.queueCh
		}
	}()
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}
	timer2 := time.NewTimer(g.maxWait)
	defer timer2.Stop()
	select {
	case g.genCh <- struct{}{}:
		acquired = true
		return func() { <-g.genCh; <-g.queueCh }, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer2.C:
		return func() {}, tooBusyError{model: name, stage: BusyInflight}
	}
}

func (g *gate) queueLen() int { return len(g.queueCh) }
func (g *gate) inflight() int { return len(g.genCh) }
func (g *gate) depth() int    { return cap(g.queueCh) }
