package engine

import (
	"log/slog"
	"sync"
	"time"

	"proofpop/internal/notification"
)

// DefaultDelayBetween is used when a notification carries no delay.
const DefaultDelayBetween = 5 * time.Second

// Handle identifies a mounted notification to its Presenter.
type Handle uint64

// Presenter paints notifications. It is called with the scheduler lock held
// and must not call back into the scheduler.
type Presenter interface {
	Mount(n *notification.Notification) (Handle, error)
	// Exit starts the exit animation; Unmount follows once it has run.
	Exit(h Handle, fadeOut time.Duration)
	Unmount(h Handle)
	// Retire runs the exit animation and removes the element by itself.
	Retire(h Handle, fadeOut time.Duration)
}

// Scheduler plays a queue back one notification at a time. Every transition
// runs under mu and at most one timer is pending, so display state is only
// ever changed by one chain of callbacks.
type Scheduler struct {
	mu        sync.Mutex
	clock     Clock
	presenter Presenter
	caps      *Caps
	state     *State
	onDisplay func(n *notification.Notification)
	shown     []*notification.Notification
}

func NewScheduler(clock Clock, presenter Presenter, caps *Caps) *Scheduler {
	if caps == nil {
		caps = NewCaps(nil, nil, clock.Now)
	}
	return &Scheduler{
		clock:     clock,
		presenter: presenter,
		caps:      caps,
		state:     &State{},
	}
}

// OnDisplay registers a callback run after each notification mounts. It runs
// once the scheduler lock is released, so it may call back into the
// scheduler.
func (s *Scheduler) OnDisplay(f func(n *notification.Notification)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDisplay = f
}

// Start arms the first display after the most eager widget's initial delay.
// An empty queue leaves the scheduler idle. Start only works once.
func (s *Scheduler) Start(queue []*notification.Notification) bool {
	s.mu.Lock()
	defer s.unlock()

	st := s.state
	if st.Stage != StageIdle || len(st.Queue) > 0 || len(queue) == 0 {
		return false
	}

	st.Queue = queue
	st.Index = 0
	st.Stage = StageWaitingInitialDelay
	s.schedule(initialDelay(queue), s.display)

	slog.Debug("Playback scheduled", "queue_length", len(queue))
	return true
}

// ShowNext moves playback forward now. It does nothing while a notification
// is displaying.
func (s *Scheduler) ShowNext() {
	s.mu.Lock()
	defer s.unlock()

	st := s.state
	if st.Displaying || len(st.Queue) == 0 {
		return
	}

	switch st.Stage {
	case StageWaitingInitialDelay:
		s.cancelTimer()
		s.display()
	case StageCooldown:
		s.cancelTimer()
		s.advance()
	}
}

// Inject shows a notification from outside the queue, retiring whatever is
// on screen. Playback resumes at the current queue slot afterwards.
func (s *Scheduler) Inject(n *notification.Notification) {
	s.mu.Lock()
	defer s.unlock()

	if s.state.Stage == StageStopped || n == nil {
		return
	}
	s.cancelTimer()
	s.mount(n, true)
}

// Dismiss starts the exit of n when it is the notification on screen.
// Playback carries on as if its display time had run out.
func (s *Scheduler) Dismiss(n *notification.Notification) {
	s.mu.Lock()
	defer s.unlock()

	if !s.isCurrent(n) {
		return
	}
	s.cancelTimer()
	s.beginExit()
}

// Pause holds n on screen while it is displaying with a finite duration.
func (s *Scheduler) Pause(n *notification.Notification) {
	s.mu.Lock()
	defer s.unlock()

	st := s.state
	if !s.isCurrent(n) || st.Paused || st.Stage != StageDisplaying || st.exitAt.IsZero() {
		return
	}
	st.remaining = max(st.exitAt.Sub(s.clock.Now()), 0)
	st.Paused = true
	s.cancelTimer()
}

// Resume gives a paused notification the rest of its display time.
func (s *Scheduler) Resume(n *notification.Notification) {
	s.mu.Lock()
	defer s.unlock()

	st := s.state
	if !st.Paused || !s.isCurrent(n) {
		return
	}
	st.Paused = false
	s.scheduleExit(st.remaining)
}

// Stop cancels the pending timer. Nothing mounts afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelTimer()
	s.state.Stage = StageStopped
}

// unlock releases mu, then reports every notification mounted while it
// was held.
func (s *Scheduler) unlock() {
	shown, f := s.shown, s.onDisplay
	s.shown = nil
	s.mu.Unlock()

	if f == nil {
		return
	}
	for _, n := range shown {
		f(n)
	}
}

func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.snapshot()
}

// display shows the item at the current index, skipping capped slots.
func (s *Scheduler) display() {
	st := s.state
	n := len(st.Queue)

	for tries := 0; tries < n; tries++ {
		next := st.Queue[st.Index]

		if st.Current != nil && st.Current.Notification == next && !st.Current.Exiting {
			st.Stage = StageDisplaying
			return
		}

		if s.caps.Allow(next.WidgetID, next.Settings.Triggers) {
			s.mount(next, false)
			return
		}

		slog.Debug("Skipping capped notification", "notification_id", next.ID, "widget_id", next.WidgetID)
		st.Index = (st.Index + 1) % n
	}

	st.Stage = StageCooldown
	s.schedule(delayBetween(st.Queue[st.Index]), s.display)
}

func (s *Scheduler) advance() {
	st := s.state
	st.Index = (st.Index + 1) % len(st.Queue)
	s.display()
}

func (s *Scheduler) mount(n *notification.Notification, injected bool) {
	st := s.state

	if st.Current != nil {
		prev := st.Current
		s.presenter.Retire(prev.Handle, prev.Notification.Settings.Timing.FadeOut)
		st.Current = nil
	}

	h, err := s.presenter.Mount(n)
	if err != nil {
		slog.Warn("Failed to render notification", "notification_id", n.ID, "widget_id", n.WidgetID, "error", err)
		st.Displaying = false
		s.cooldown(injected)
		return
	}

	st.Paused = false
	st.exitAt = time.Time{}
	st.Current = &Mounted{Notification: n, Handle: h, Injected: injected}
	st.Displaying = true
	st.Stage = StageDisplaying
	st.Shown++
	s.shown = append(s.shown, n)

	if d := n.Settings.Timing.DisplayDuration; d > 0 {
		s.scheduleExit(d)
		return
	}

	// A zero duration stays up until the next item replaces it.
	if len(st.Queue) > 1 || (injected && len(st.Queue) > 0) {
		s.schedule(delayBetween(s.upcoming(injected)), s.resumeStep(injected))
	}
}

func (s *Scheduler) beginExit() {
	st := s.state
	cur := st.Current
	if cur == nil {
		return
	}

	st.Stage = StageCooldown
	st.Paused = false
	st.exitAt = time.Time{}
	cur.Exiting = true
	fadeOut := cur.Notification.Settings.Timing.FadeOut
	s.presenter.Exit(cur.Handle, fadeOut)
	s.schedule(fadeOut, s.finishExit)
}

func (s *Scheduler) scheduleExit(d time.Duration) {
	s.state.exitAt = s.clock.Now().Add(d)
	s.schedule(d, s.beginExit)
}

func (s *Scheduler) isCurrent(n *notification.Notification) bool {
	st := s.state
	return n != nil && st.Stage != StageStopped && st.Current != nil &&
		st.Current.Notification == n && !st.Current.Exiting
}

func (s *Scheduler) finishExit() {
	st := s.state
	cur := st.Current
	if cur == nil {
		return
	}

	s.presenter.Unmount(cur.Handle)
	st.Current = nil
	st.Displaying = false
	s.cooldown(cur.Injected)
}

// cooldown waits the upcoming item's delay before the next display.
func (s *Scheduler) cooldown(injected bool) {
	st := s.state
	if len(st.Queue) == 0 {
		st.Stage = StageIdle
		return
	}
	st.Stage = StageCooldown
	s.schedule(delayBetween(s.upcoming(injected)), s.resumeStep(injected))
}

// upcoming is the item the next display will start from.
func (s *Scheduler) upcoming(injected bool) *notification.Notification {
	st := s.state
	if injected {
		return st.Queue[st.Index]
	}
	return st.Queue[(st.Index+1)%len(st.Queue)]
}

// resumeStep continues playback: after a queue item the index advances,
// after an injected item the current slot is shown.
func (s *Scheduler) resumeStep(injected bool) func() {
	if injected {
		return s.display
	}
	return s.advance
}

func (s *Scheduler) schedule(d time.Duration, fn func()) {
	s.cancelTimer()

	st := s.state
	st.timerSeq++
	seq := st.timerSeq
	st.timer = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.unlock()

		if st.Stage == StageStopped || st.timerSeq != seq {
			return
		}
		st.timer = nil
		fn()
	})
}

func (s *Scheduler) cancelTimer() {
	st := s.state
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
	st.timerSeq++
}

func initialDelay(queue []*notification.Notification) time.Duration {
	delay := queue[0].Settings.Triggers.ShowAfterDelay
	for _, n := range queue[1:] {
		if d := n.Settings.Triggers.ShowAfterDelay; d < delay {
			delay = d
		}
	}
	if delay < 0 {
		return 0
	}
	return delay
}

func delayBetween(n *notification.Notification) time.Duration {
	if d := n.Settings.Triggers.DelayBetween; d > 0 {
		return d
	}
	return DefaultDelayBetween
}
