package server

import (
	"time"
)

type lifecycle struct {
	mgr         *AnimationMgr
	id          string
	killTimer   *time.Timer
	killTimeout time.Duration
}

func newLifecycle(mgr *AnimationMgr, id string) *lifecycle {
	lc := &lifecycle{
		mgr:         mgr,
		id:          id,
		killTimer:   time.NewTimer(mgr.ttl),
		killTimeout: mgr.ttl,
	}
	go func() {
		<-lc.killTimer.C
		mgr.kill(id)
	}()
	return lc
}

func (lc *lifecycle) touch() {
	lc.mgr.touch(lc.id)
}

func (lc *lifecycle) persist() {
	lc.mgr.persist(lc.id)
}

func (lc *lifecycle) startTimer() {
	lc.killTimer.Reset(lc.killTimeout)
}

func (lc *lifecycle) stopTimer() {
	lc.killTimer.Stop()
}
