package feed

import (
	"context"
	"errors"

	"github.com/looplab/fsm"
)

// State is the load phase of the feed view.
type State string

const (
	Idle    State = "idle"
	Loading State = "loading"
	Loaded  State = "loaded"
	Failed  State = "failed"
)

func (s State) String() string {
	return string(s)
}

const (
	EventLoad   = "load"
	EventLoaded = "loaded"
	EventFail   = "fail"
)

// newStateMachine builds the refresh cycle: idle, loaded and failed all
// start a load; only a load in flight can finish or fail. Overlapping
// refreshes keep the machine in loading.
func newStateMachine() *fsm.FSM {
	return fsm.NewFSM(
		string(Idle),
		fsm.Events{
			{Name: EventLoad, Src: []string{string(Idle), string(Loading), string(Loaded), string(Failed)}, Dst: string(Loading)},
			{Name: EventLoaded, Src: []string{string(Loading)}, Dst: string(Loaded)},
			{Name: EventFail, Src: []string{string(Loading)}, Dst: string(Failed)},
		},
		fsm.Callbacks{},
	)
}

// fire applies event to sm. Re-entering the current state is not an error.
func fire(sm *fsm.FSM, event string) error {
	err := sm.Event(context.Background(), event)
	var noTransition fsm.NoTransitionError
	if err != nil && !errors.As(err, &noTransition) {
		return err
	}
	return nil
}
