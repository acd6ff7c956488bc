package splash

import (
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kingrea/agrovoo/internal/clock"
)

// Frame is everything a renderer needs to draw the splash at one instant.
type Frame struct {
	RunID         uint64
	Stage         Stage
	StageEntered  time.Time
	DronePosition float64
	Progress      float64
	// Message is the scan status line. It is empty before StageScanning.
	Message string
}

// Observer receives a Frame on every observable change of a run. It is
// called with the run's lock held and must not call back into the Run.
type Observer func(Frame)

// Sequencer starts splash runs. At most one run is active per Sequencer.
type Sequencer struct {
	clock      clock.Clock
	timings    Timings
	plantCount int
	observer   Observer
	logger     *zap.Logger

	mu     sync.Mutex
	rng    *rand.Rand
	active *Run
	runs   uint64
}

// Option customizes Sequencer construction.
type Option func(*Sequencer)

// WithClock overrides the wall clock, mostly for tests.
func WithClock(c clock.Clock) Option {
	return func(s *Sequencer) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithTimings overrides DefaultTimings.
func WithTimings(t Timings) Option {
	return func(s *Sequencer) {
		s.timings = t
	}
}

// WithRand sets the source used to generate plant descriptors.
func WithRand(rng *rand.Rand) Option {
	return func(s *Sequencer) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithObserver registers the frame observer shared by every run.
func WithObserver(o Observer) Option {
	return func(s *Sequencer) {
		s.observer = o
	}
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Sequencer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPlantCount overrides DefaultPlantCount. Negative values are ignored.
func WithPlantCount(n int) Option {
	return func(s *Sequencer) {
		if n >= 0 {
			s.plantCount = n
		}
	}
}

// New builds a Sequencer. It fails only when the timings do not validate.
func New(opts ...Option) (*Sequencer, error) {
	s := &Sequencer{
		clock:      clock.Real(),
		timings:    DefaultTimings(),
		plantCount: DefaultPlantCount,
		logger:     zap.NewNop(),
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if err := s.timings.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Timings returns the configured timings.
func (s *Sequencer) Timings() Timings {
	return s.timings
}

// Start begins a new run which calls onComplete exactly once when it
// finishes naturally. A run that is still active is canceled first, so its
// own completion callback never fires.
func (s *Sequencer) Start(onComplete func()) *Run {
	s.mu.Lock()
	prev := s.active
	s.runs++
	r := &Run{
		seq:        s,
		id:         s.runs,
		plants:     generatePlants(s.rng, s.plantCount),
		onComplete: onComplete,
		tasks:      map[uint64]clock.Task{},
		done:       make(chan struct{}),
	}
	s.active = r
	s.mu.Unlock()

	if prev != nil && prev.cancel() {
		s.logger.Info("splash: active run superseded",
			zap.Uint64("canceled_run", prev.id),
			zap.Uint64("run", r.id))
	}
	r.begin()
	return r
}

// Cancel tears a run down. It is safe to call more than once and on runs
// that already finished. See Run.Cancel for the result.
func (s *Sequencer) Cancel(r *Run) bool {
	if r == nil {
		return false
	}
	return r.Cancel()
}

// Active returns the run currently in progress, or nil.
func (s *Sequencer) Active() *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Sequencer) release(r *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == r {
		s.active = nil
	}
}

// Run is one pass through the splash sequence.
type Run struct {
	seq        *Sequencer
	id         uint64
	plants     []PlantDescriptor
	onComplete func()

	mu            sync.Mutex
	stage         Stage
	stageEntered  time.Time
	droneTicks    int
	progressTicks int
	tasks         map[uint64]clock.Task
	nextTask      uint64
	canceled      bool
	completed     bool
	done          chan struct{}
}

// ID identifies the run within its Sequencer.
func (r *Run) ID() uint64 {
	return r.id
}

// Plants returns the descriptors generated for this run.
func (r *Run) Plants() []PlantDescriptor {
	out := make([]PlantDescriptor, len(r.plants))
	copy(out, r.plants)
	return out
}

// Stage returns the current stage.
func (r *Run) Stage() Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stage
}

// Progress returns the scan percentage in [0, 100].
func (r *Run) Progress() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progressLocked()
}

// DronePosition returns the normalized drone entry position in [0, 1].
func (r *Run) DronePosition() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dronePositionLocked()
}

// Snapshot returns the current frame.
func (r *Run) Snapshot() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frameLocked()
}

// Done is closed once the run has completed or been canceled.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Canceled reports whether the run was torn down before completing.
func (r *Run) Canceled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.canceled
}

// Completed reports whether the completion callback has been claimed.
func (r *Run) Completed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed
}

// Pending reports how many timers and intervals the run still owns.
func (r *Run) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

// Cancel stops every timer and interval the run owns and reports whether
// this call tore the run down. Once it returns true no further stage,
// position or progress change is observable and the completion callback
// will not be invoked.
//
// Completion is claimed as soon as Completed reports true. From then on
// Cancel returns false and the callback still runs, possibly after Cancel
// has returned when the clock fires on another goroutine.
func (r *Run) Cancel() bool {
	return r.cancel()
}

func (r *Run) cancel() bool {
	r.mu.Lock()
	if r.canceled || r.completed {
		r.mu.Unlock()
		return false
	}
	r.canceled = true
	r.cancelAllLocked()
	stage := r.stage
	close(r.done)
	r.mu.Unlock()

	r.seq.release(r)
	r.seq.logger.Debug("splash: run canceled",
		zap.Uint64("run", r.id),
		zap.Stringer("stage", stage))
	return true
}

func (r *Run) begin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.canceled {
		return
	}
	r.enterLocked(StageIdle)
	r.afterLocked(r.seq.timings.GroundDelay, func(uint64) {
		r.enterLocked(StageGroundRevealed)
		r.afterLocked(r.seq.timings.PlantsDelay, func(uint64) {
			r.enterLocked(StagePlantsGrowing)
			r.afterLocked(r.seq.timings.DroneDelay, func(uint64) {
				r.startDroneLocked()
			})
		})
	})
}

func (r *Run) startDroneLocked() {
	r.droneTicks = 0
	r.enterLocked(StageDroneEntering)
	r.everyLocked(r.seq.timings.DroneTick, func(id uint64) {
		r.droneTicks++
		r.emitLocked()
		if r.dronePositionLocked() < 1 {
			return
		}
		r.cancelTaskLocked(id)
		r.afterLocked(r.seq.timings.SettleDelay, func(uint64) {
			r.startScanLocked()
		})
	})
}

func (r *Run) startScanLocked() {
	r.progressTicks = 0
	r.enterLocked(StageScanning)
	r.everyLocked(r.seq.timings.ProgressTick, func(id uint64) {
		r.progressTicks++
		r.emitLocked()
		if r.progressLocked() < 100 {
			return
		}
		r.cancelTaskLocked(id)
		r.afterLocked(r.seq.timings.HoldDelay, func(uint64) {
			r.enterLocked(StageFinished)
			r.afterLocked(r.seq.timings.CompleteDelay, func(uint64) {
				r.completed = true
			})
		})
	})
}

func (r *Run) enterLocked(stage Stage) {
	r.stage = stage
	r.stageEntered = r.seq.clock.Now()
	r.seq.logger.Debug("splash: stage entered",
		zap.Uint64("run", r.id),
		zap.Stringer("stage", stage))
	r.emitLocked()
}

func (r *Run) emitLocked() {
	if r.seq.observer != nil {
		r.seq.observer(r.frameLocked())
	}
}

func (r *Run) frameLocked() Frame {
	f := Frame{
		RunID:         r.id,
		Stage:         r.stage,
		StageEntered:  r.stageEntered,
		DronePosition: r.dronePositionLocked(),
		Progress:      r.progressLocked(),
	}
	if r.stage >= StageScanning {
		f.Message = StatusMessage(f.Progress)
	}
	return f
}

func (r *Run) dronePositionLocked() float64 {
	if r.stage < StageDroneEntering {
		return 0
	}
	if r.stage > StageDroneEntering {
		return 1
	}
	return accumulate(r.droneTicks, r.seq.timings.DroneStep, 1)
}

func (r *Run) progressLocked() float64 {
	if r.stage < StageScanning {
		return 0
	}
	return accumulate(r.progressTicks, r.seq.timings.ProgressStep, 100)
}

// afterLocked registers a one-shot task. The step runs with the lock held.
func (r *Run) afterLocked(d time.Duration, step func(id uint64)) {
	r.nextTask++
	id := r.nextTask
	r.tasks[id] = r.seq.clock.AfterFunc(d, r.guard(id, true, step))
}

// everyLocked registers an interval task. The step must cancel its own task
// once it is done.
func (r *Run) everyLocked(d time.Duration, step func(id uint64)) {
	r.nextTask++
	id := r.nextTask
	r.tasks[id] = r.seq.clock.Every(d, r.guard(id, false, step))
}

// guard wraps a step so that it only runs while its task is still owned by
// a live run. A late tick racing a cancel sees its task gone and returns.
func (r *Run) guard(id uint64, oneShot bool, step func(id uint64)) func() {
	return func() {
		r.mu.Lock()
		if r.canceled || r.completed {
			r.mu.Unlock()
			return
		}
		if _, live := r.tasks[id]; !live {
			r.mu.Unlock()
			return
		}
		if oneShot {
			delete(r.tasks, id)
		}
		step(id)
		finished := r.completed
		if finished {
			r.cancelAllLocked()
		}
		r.mu.Unlock()
		if finished {
			r.finish()
		}
	}
}

func (r *Run) finish() {
	r.seq.release(r)
	r.seq.logger.Info("splash: run complete", zap.Uint64("run", r.id))
	if r.onComplete != nil {
		r.onComplete()
	}
	close(r.done)
}

func (r *Run) cancelTaskLocked(id uint64) {
	if task, ok := r.tasks[id]; ok {
		task.Cancel()
		delete(r.tasks, id)
	}
}

func (r *Run) cancelAllLocked() {
	for id, task := range r.tasks {
		task.Cancel()
		delete(r.tasks, id)
	}
}
