package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/comalice/superloop"
)

var (
	ErrLoopInitialized = errors.New("loop already initialized")
	ErrNotInitialized  = errors.New("loop not initialized")
	ErrLoopRunning     = errors.New("loop is running")
	ErrLoopStopped     = errors.New("loop stopped")
	ErrTooManyTasks    = errors.New("too many tasks")
	ErrNilTask         = errors.New("nil task")
	ErrDuplicateTask   = errors.New("duplicate task name")
)

// Instruments receives per-tick measurements. internal/metrics provides a
// Prometheus implementation.
type Instruments interface {
	ObserveTick(d time.Duration)
	TimingViolation()
}

type noInstruments struct{}

func (noInstruments) ObserveTick(time.Duration) {}
func (noInstruments) TimingViolation()          {}

// Config configures the loop
type Config struct {
	TickRate       time.Duration // Wall-clock tick period (default: 1ms)
	Budget         time.Duration // Longest allowed pass (default: TickRate)
	MaxTasks       int           // Registration capacity (default: 32)
	TicksPerSecond uint64        // Ticks per seconds counter step (default: 1000)
	TimeWarnings   bool          // Log timing violations

	// Logger is handed to every registered task when set.
	Logger      *zap.SugaredLogger
	Instruments Instruments
}

// Loop runs registered tasks once per tick, in a fixed order, on one goroutine.
type Loop struct {
	cfg    Config
	ctx    *superloop.Context
	logger *zap.SugaredLogger
	inst   Instruments
	runID  string

	// mu serialises passes with registration and snapshots
	mu          sync.Mutex
	tasks       []TaskWithMeta
	sequenceNum uint64
	lifecycle   *fsm.FSM
	violations  atomic.Uint64
	lastPass    time.Duration

	// Control
	ticker     *time.Ticker
	tickCancel context.CancelFunc
	stopped    chan struct{}
}

// NewLoop creates a loop with its own Context
func NewLoop(cfg Config) *Loop {
	if cfg.TickRate <= 0 {
		cfg.TickRate = time.Millisecond
	}
	if cfg.Budget <= 0 {
		cfg.Budget = cfg.TickRate
	}
	if cfg.MaxTasks <= 0 {
		cfg.MaxTasks = 32
	}
	if cfg.TicksPerSecond == 0 {
		cfg.TicksPerSecond = superloop.DefaultTicksPerSecond
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	inst := cfg.Instruments
	if inst == nil {
		inst = noInstruments{}
	}

	runID := uuid.NewString()
	logger = logger.With("run", runID)

	return &Loop{
		cfg:       cfg,
		ctx:       superloop.NewContextWithRate(cfg.TicksPerSecond),
		logger:    logger,
		inst:      inst,
		runID:     runID,
		tasks:     make([]TaskWithMeta, 0, cfg.MaxTasks),
		lifecycle: newLifecycle(logger),
	}
}

// Register adds a task with default priority
func (l *Loop) Register(task *superloop.Task) error {
	return l.RegisterWithPriority(task, 0)
}

// RegisterWithPriority adds a task. Higher priorities run earlier in each
// pass; equal priorities run in registration order.
func (l *Loop) RegisterWithPriority(task *superloop.Task, priority int) error {
	if task == nil {
		return ErrNilTask
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lifecycle.Current() != LifecycleCreated {
		return ErrLoopInitialized
	}
	if len(l.tasks) >= l.cfg.MaxTasks {
		return fmt.Errorf("%w: limit is %d", ErrTooManyTasks, l.cfg.MaxTasks)
	}
	for _, t := range l.tasks {
		if t.Task.Name() == task.Name() {
			return fmt.Errorf("%w: %s", ErrDuplicateTask, task.Name())
		}
	}

	if l.cfg.Logger != nil {
		task.SetLogger(l.logger)
	}

	l.tasks = append(l.tasks, TaskWithMeta{
		Task:        task,
		SequenceNum: l.sequenceNum,
		Priority:    priority,
	})
	l.sequenceNum++
	sortTasks(l.tasks)

	return nil
}

// Initialize runs every task's Initialize in order with FlagInitializing set,
// then freezes the task list.
func (l *Loop) Initialize() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lifecycle.Current() != LifecycleCreated {
		return ErrLoopInitialized
	}

	l.ctx.SetSystemFlags(superloop.FlagInitializing)
	for _, t := range l.tasks {
		t.Task.Initialize(l.ctx)
	}
	l.ctx.ClearSystemFlags(superloop.FlagInitializing)

	l.logger.Infow("loop initialized", "tasks", len(l.tasks))
	return l.lifecycle.Event(context.Background(), eventInitialize)
}

// Step runs one pass at the next tick on the simulated clock
func (l *Loop) Step() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkManual(); err != nil {
		return err
	}
	l.pass(l.ctx.Tick() + 1)
	return nil
}

// Run runs n passes on the simulated clock
func (l *Loop) Run(n int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkManual(); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		l.pass(l.ctx.Tick() + 1)
	}
	return nil
}

func (l *Loop) checkManual() error {
	switch l.lifecycle.Current() {
	case LifecycleCreated:
		return ErrNotInitialized
	case LifecycleRunning:
		return ErrLoopRunning
	case LifecycleStopped:
		return ErrLoopStopped
	}
	return nil
}

// Start begins wall-clock execution. The loop is initialized first if needed.
// Cancelling ctx stops the loop as if Stop had been called.
func (l *Loop) Start(ctx context.Context) error {
	if l.Lifecycle() == LifecycleCreated {
		if err := l.Initialize(); err != nil {
			return err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.lifecycle.Event(ctx, eventStart); err != nil {
		return fmt.Errorf("start loop: %w", err)
	}

	var tickCtx context.Context
	tickCtx, l.tickCancel = context.WithCancel(ctx)
	l.stopped = make(chan struct{})
	origin := time.Now()
	l.ticker = time.NewTicker(l.cfg.TickRate)

	go l.tickLoop(tickCtx, l.ticker, l.stopped, origin, l.ctx.Tick())

	l.logger.Infow("loop started", "tickRate", l.cfg.TickRate)
	return nil
}

// Stop halts the loop. It waits for an in-flight pass to finish. A stopped
// loop cannot be restarted.
func (l *Loop) Stop() error {
	l.mu.Lock()
	cancel, stopped := l.tickCancel, l.stopped
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if stopped != nil {
		<-stopped
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.halt()
}

// halt moves the loop to stopped. l.mu must be held.
func (l *Loop) halt() error {
	if l.lifecycle.Current() == LifecycleStopped {
		return nil
	}
	if l.ticker != nil {
		l.ticker.Stop()
	}
	l.ctx.ClearSystemFlags(superloop.FlagSleeping)
	l.logger.Infow("loop stopped", "tick", l.ctx.Tick(), "violations", l.violations.Load())
	return l.lifecycle.Event(context.Background(), eventStop)
}

// tickLoop is the main wall-clock loop
func (l *Loop) tickLoop(ctx context.Context, ticker *time.Ticker, stopped chan struct{}, origin time.Time, base uint64) {
	defer close(stopped)

	for {
		select {
		case <-ctx.Done():
			l.mu.Lock()
			if err := l.halt(); err != nil {
				l.logger.Errorw("stop on cancel", "error", err)
			}
			l.mu.Unlock()
			return
		case now := <-ticker.C:
			tick := base + uint64(now.Sub(origin)/l.cfg.TickRate)
			l.safePass(tick)
		}
	}
}

// safePass runs one pass and keeps the loop alive if a task panics
func (l *Loop) safePass(tick uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			l.logger.Errorw("task panicked", "tick", l.ctx.Tick(), "panic", r)
		}
		l.ctx.SetSystemFlags(superloop.FlagSleeping)
	}()

	if tick <= l.ctx.Tick() {
		tick = l.ctx.Tick() + 1
	}
	l.pass(tick)
}

// Context returns the shared context
func (l *Loop) Context() *superloop.Context {
	return l.ctx
}

// Tasks returns the tasks in execution order
func (l *Loop) Tasks() []*superloop.Task {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*superloop.Task, len(l.tasks))
	for i, t := range l.tasks {
		out[i] = t.Task
	}
	return out
}

// GetTickNumber returns the current tick count
func (l *Loop) GetTickNumber() uint64 {
	return l.ctx.Tick()
}

// TimingViolations returns how many passes broke the timing budget
func (l *Loop) TimingViolations() uint64 {
	return l.violations.Load()
}

// Lifecycle returns the loop's lifecycle state
func (l *Loop) Lifecycle() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lifecycle.Current()
}

// RunID identifies this loop instance in logs and snapshots
func (l *Loop) RunID() string {
	return l.runID
}
