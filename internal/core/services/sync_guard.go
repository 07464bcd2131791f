package services

import "sync"

// accountGuard admits at most one sync run per linked account within this
// process. The cursor compare-and-set protects against other processes.
type accountGuard struct {
	held sync.Map // linked account id -> run id
}

// tryAcquire claims the account for runID. It reports false if another run
// already holds it.
func (g *accountGuard) tryAcquire(linkedAccountID, runID string) bool {
	_, loaded := g.held.LoadOrStore(linkedAccountID, runID)
	return !loaded
}

// release frees the account if runID still holds it.
func (g *accountGuard) release(linkedAccountID, runID string) {
	g.held.CompareAndDelete(linkedAccountID, runID)
}

