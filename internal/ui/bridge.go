package ui

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/desertthunder/custctl/internal/listing"
	"github.com/desertthunder/custctl/internal/tasks"
)

var (
	_ listing.Navigator = (*redirector)(nil)
	_ tasks.Indicator   = (*activity)(nil)
	_ tasks.Alerter     = (*notices)(nil)
	_ tasks.Refresher   = (*refresher)(nil)
)

// redirector records login redirects requested from command goroutines; Update acts on them.
type redirector struct {
	pending atomic.Bool
}

func (r *redirector) ToLogin()   { r.pending.Store(true) }
func (r *redirector) take() bool { return r.pending.Swap(false) }

// activity counts running exports for the busy spinner.
type activity struct {
	n atomic.Int32
}

func (a *activity) Start()       { a.n.Add(1) }
func (a *activity) Stop()        { a.n.Add(-1) }
func (a *activity) active() bool { return a.n.Load() > 0 }

// notices holds the latest alert until the view picks it up.
type notices struct {
	mu  sync.Mutex
	msg string
}

func (n *notices) Alert(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msg = msg
}

func (n *notices) take() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	msg := n.msg
	n.msg = ""
	return msg
}

// refresher re-fetches the listing after a create and keeps the result for the create message.
type refresher struct {
	ctrl *listing.Controller
	mu   sync.Mutex
	last *fetchResult
}

func (r *refresher) Refresh(ctx context.Context) {
	snap, err := r.ctrl.Fetch(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = &fetchResult{snap: snap, err: err}
}

func (r *refresher) take() *fetchResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	last := r.last
	r.last = nil
	return last
}
