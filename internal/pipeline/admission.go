package pipeline

import (
	"context"
	"time"
)

// beginGeneration reserves a queue slot and then the single in-flight slot.
// Returns a release func to be deferred.
func (p *Pipeline) beginGeneration(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}
	timer := time.NewTimer(p.cfg.MaxWait)
	defer timer.Stop()
	select {
	case p.queueCh <- struct{}{}:
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		return func() {}, tooBusyError{modelID: p.ModelName()}
	}

	acquired := false
	defer func() {
		if !acquired {
			<-p.queueCh
		}
	}()
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}
	timer2 := time.NewTimer(p.cfg.MaxWait)
	defer timer2.Stop()
	select {
	case p.genCh <- struct{}{}:
		acquired = true
		return func() { <-p.genCh; <-p.queueCh }, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer2.C:
		return func() {}, tooBusyError{modelID: p.ModelName()}
	}
}
