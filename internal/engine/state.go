package engine

import (
	"time"

	"proofpop/internal/notification"
)

// Stage is a playback state machine state.
type Stage int

const (
	StageIdle Stage = iota
	StageWaitingInitialDelay
	StageDisplaying
	StageCooldown
	StageStopped
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageWaitingInitialDelay:
		return "waiting_initial_delay"
	case StageDisplaying:
		return "displaying"
	case StageCooldown:
		return "cooldown"
	case StageStopped:
		return "stopped"
	}
	return "unknown"
}

// Mounted is the notification currently on screen.
type Mounted struct {
	Notification *notification.Notification
	Handle       Handle
	// Injected marks a notification shown from outside the queue.
	Injected bool
	Exiting  bool
}

// State is the playback state of one page load. Only the scheduler mutates
// it, always under its lock.
type State struct {
	Queue      []*notification.Notification
	Index      int
	Displaying bool
	Current    *Mounted
	Stage      Stage
	Shown      int
	// Paused holds the current notification on screen until resumed.
	Paused bool

	timer     Timer
	timerSeq  uint64
	exitAt    time.Time
	remaining time.Duration
}

// Snapshot is a copy of the state safe to hand to callers.
type Snapshot struct {
	Stage         string `json:"stage"`
	QueueLength   int    `json:"queue_length"`
	Index         int    `json:"index"`
	Displaying    bool   `json:"displaying"`
	Paused        bool   `json:"paused,omitempty"`
	CurrentID     string `json:"current_id,omitempty"`
	CurrentWidget string `json:"current_widget,omitempty"`
	Shown         int    `json:"shown"`
	TimerPending  bool   `json:"timer_pending"`
}

func (st *State) snapshot() Snapshot {
	snap := Snapshot{
		Stage:        st.Stage.String(),
		QueueLength:  len(st.Queue),
		Index:        st.Index,
		Displaying:   st.Displaying,
		Paused:       st.Paused,
		Shown:        st.Shown,
		TimerPending: st.timer != nil,
	}
	if st.Current != nil {
		snap.CurrentID = st.Current.Notification.ID
		snap.CurrentWidget = st.Current.Notification.WidgetID
	}
	return snap
}
