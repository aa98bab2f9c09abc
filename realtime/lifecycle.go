package realtime

import (
	"context"

	"github.com/looplab/fsm"
	"go.uber.org/zap"
)

const (
	LifecycleCreated     = "created"
	LifecycleInitialized = "initialized"
	LifecycleRunning     = "running"
	LifecycleStopped     = "stopped"

	eventInitialize = "initialize"
	eventStart      = "start"
	eventStop       = "stop"
)

func newLifecycle(logger *zap.SugaredLogger) *fsm.FSM {
	return fsm.NewFSM(
		LifecycleCreated,
		fsm.Events{
			{Name: eventInitialize, Src: []string{LifecycleCreated}, Dst: LifecycleInitialized},
			{Name: eventStart, Src: []string{LifecycleInitialized}, Dst: LifecycleRunning},
			{Name: eventStop, Src: []string{LifecycleCreated, LifecycleInitialized, LifecycleRunning}, Dst: LifecycleStopped},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				logger.Debugf("loop %s -> %s", e.Src, e.Dst)
			},
		},
	)
}
