package node

import (
	"context"
	"sync"
	"time"
)

// worker manages a goroutine that makes a mining attempt on a timer.
type worker struct {
	node      *Node
	wg        sync.WaitGroup
	shut      chan struct{}
	ticker    *time.Ticker
	evHandler EventHandler
}

// runWorker starts the mining goroutine for the node.
func runWorker(ctx context.Context, node *Node, interval time.Duration, evHandler EventHandler) *worker {
	w := worker{
		node:      node,
		shut:      make(chan struct{}),
		ticker:    time.NewTicker(interval),
		evHandler: evHandler,
	}

	// We don't want to return until we know the G is up and running.
	hasStarted := make(chan bool)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		hasStarted <- true
		w.miningOperations(ctx)
	}()

	<-hasStarted

	return &w
}

// shutdown terminates the goroutine performing work.
func (w *worker) shutdown() {
	w.evHandler("node: %s: worker: shutdown: stop ticker", w.node.name)
	w.ticker.Stop()

	w.evHandler("node: %s: worker: shutdown: terminate goroutine", w.node.name)
	close(w.shut)
	w.wg.Wait()
}

// miningOperations makes a mining attempt on every tick until shutdown.
func (w *worker) miningOperations(ctx context.Context) {
	w.evHandler("node: %s: worker: miningOperations: G started", w.node.name)
	defer w.evHandler("node: %s: worker: miningOperations: G completed", w.node.name)

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.runMiningOperation()
			}
		case <-ctx.Done():
			w.evHandler("node: %s: worker: miningOperations: context cancelled", w.node.name)
			return
		case <-w.shut:
			w.evHandler("node: %s: worker: miningOperations: received shut signal", w.node.name)
			return
		}
	}
}

// runMiningOperation makes one mining attempt and logs the outcome.
func (w *worker) runMiningOperation() {
	mined, err := w.node.MineOnce()
	if err != nil {
		w.evHandler("node: %s: worker: runMiningOperation: ERROR: %s", w.node.name, err)
		return
	}

	if mined {
		w.evHandler("node: %s: worker: runMiningOperation: block published", w.node.name)
	}
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
