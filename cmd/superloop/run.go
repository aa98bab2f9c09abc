package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/comalice/superloop/hal"
	"github.com/comalice/superloop/internal/board"
	"github.com/comalice/superloop/internal/config"
	"github.com/comalice/superloop/internal/extensibility"
	"github.com/comalice/superloop/internal/logger"
	"github.com/comalice/superloop/internal/metrics"
	"github.com/comalice/superloop/internal/production"
	"github.com/comalice/superloop/realtime"
)

var (
	runOpts = struct {
		ticks       uint64
		duration    time.Duration
		snapshotDir string
		format      string
		stdin       bool
		events      bool
	}{}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the configured tasks",
		Long: `Run the configured tasks. With --ticks the loop is stepped on a simulated
clock as fast as possible; otherwise it runs on the wall-clock ticker until
interrupted or --duration elapses.

With --stdin, lines of the form "press N" and "release N" drive button N.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd.OutOrStdout(), cmd.InOrStdin())
		},
	}
)

func init() {
	runCmd.Flags().Uint64VarP(&runOpts.ticks, "ticks", "n", 0, "step this many ticks on the simulated clock, then exit")
	runCmd.Flags().DurationVarP(&runOpts.duration, "duration", "d", 0, "stop the wall-clock loop after this long (0 runs until interrupted)")
	runCmd.Flags().StringVar(&runOpts.snapshotDir, "snapshot-dir", "", "save a snapshot to this directory on exit")
	runCmd.Flags().StringVar(&runOpts.format, "snapshot-format", "yaml", "snapshot format (json, yaml)")
	runCmd.Flags().BoolVar(&runOpts.stdin, "stdin", false, "read button presses from stdin")
	runCmd.Flags().BoolVar(&runOpts.events, "events", false, "print every task transition as a JSON line")
}

func run(ctx context.Context, out io.Writer, in io.Reader) error {
	opts := board.Options{
		Logger:  logger.For(logger.ComponentTasks),
		Metrics: cfg.Metrics.Address != "",
	}

	var inputs *extensibility.ChannelInputs
	if runOpts.stdin {
		inputs = extensibility.NewChannelInputs(16)
		opts.Inputs = inputs
	}

	var publisher *production.ChannelPublisher
	done := make(chan struct{})
	if runOpts.events {
		ch := make(chan production.Transition, 256)
		publisher = production.NewChannelPublisher(ch)
		opts.Observers = append(opts.Observers, publisher)
		go printTransitions(out, ch, done)
	} else {
		close(done)
	}

	b, err := board.Build(cfg, opts)
	if err != nil {
		return err
	}

	if cfg.Metrics.Address != "" {
		server := metrics.SetupMetricsEndpoint(cfg.Metrics.Address, logger.For(logger.ComponentMetrics))
		defer server.Close()
		log.Infow("metrics endpoint listening", "addr", cfg.Metrics.Address)
	}

	if inputs != nil {
		go readButtons(ctx, in, inputs)
	}

	log.Infow("loop starting", "run", b.Loop.RunID(), "tasks", len(b.Loop.Tasks()), "board", cfg.Board)
	if runOpts.ticks > 0 {
		err = runStepped(ctx, b.Loop, runOpts.ticks)
	} else {
		err = runTicker(ctx, b.Loop, runOpts.duration)
	}
	if err != nil {
		return err
	}

	if publisher != nil {
		_ = publisher.Close()
	}
	<-done

	snap := b.Loop.Snapshot()
	log.Infow("loop stopped",
		"tick", snap.Tick,
		"seconds", snap.Seconds,
		"violations", snap.TimingViolations,
		"lifecycle", snap.Lifecycle)
	if console := b.UART.Transmitted(); console != "" {
		fmt.Fprint(out, strings.ReplaceAll(console, "\n\r", "\n"))
	}
	printLEDs(out, b, cfg.Board)

	if runOpts.snapshotDir != "" {
		return saveSnapshot(ctx, snap)
	}
	return nil
}

func runStepped(ctx context.Context, loop *realtime.Loop, ticks uint64) error {
	if err := loop.Initialize(); err != nil {
		return err
	}
	for i := uint64(0); i < ticks; i++ {
		if ctx.Err() != nil {
			break
		}
		if err := loop.Step(); err != nil {
			return err
		}
	}
	return loop.Stop()
}

func runTicker(ctx context.Context, loop *realtime.Loop, d time.Duration) error {
	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	if err := loop.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return loop.Stop()
}

func saveSnapshot(ctx context.Context, snap realtime.Snapshot) error {
	var (
		p   production.Persister
		err error
	)
	switch strings.ToLower(runOpts.format) {
	case "json":
		p, err = production.NewJSONPersister(runOpts.snapshotDir)
	case "yaml":
		p, err = production.NewYAMLPersister(runOpts.snapshotDir)
	default:
		return fmt.Errorf("unknown snapshot format %q", runOpts.format)
	}
	if err != nil {
		return err
	}
	if err := p.Save(ctx, snap); err != nil {
		return err
	}
	log.Infow("snapshot saved", "dir", runOpts.snapshotDir, "run", snap.RunID)
	return nil
}

// readButtons parses "press N" and "release N" lines until in is exhausted or
// ctx is cancelled.
func readButtons(ctx context.Context, in io.Reader, inputs *extensibility.ChannelInputs) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		change, err := parseButtonLine(scanner.Text())
		if err != nil {
			log.Warnw("ignoring input", "line", scanner.Text(), "error", err)
			continue
		}
		if !inputs.Send(change) {
			log.Warnw("input buffer full, change dropped", "pin", change.Pin)
		}
	}
}

func parseButtonLine(line string) (extensibility.PinChange, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return extensibility.PinChange{}, fmt.Errorf("expected \"press N\" or \"release N\"")
	}
	pin, err := strconv.Atoi(fields[1])
	if err != nil || pin < 0 || pin >= board.NumButtons {
		return extensibility.PinChange{}, fmt.Errorf("button %q out of range", fields[1])
	}
	switch fields[0] {
	case "press":
		return extensibility.PinChange{Pin: pin, Asserted: true}, nil
	case "release":
		return extensibility.PinChange{Pin: pin, Asserted: false}, nil
	}
	return extensibility.PinChange{}, fmt.Errorf("unknown action %q", fields[0])
}

func printTransitions(out io.Writer, ch <-chan production.Transition, done chan<- struct{}) {
	defer close(done)
	enc := json.NewEncoder(out)
	for t := range ch {
		_ = enc.Encode(t)
	}
}

func printLEDs(out io.Writer, b *board.Board, kind string) {
	leds := hal.DotMatrixLEDs
	if kind != config.BoardDotMatrix {
		leds = hal.ASCIILEDs
	}
	var lit []string
	for _, l := range b.Sim.LEDs.Lit(leds) {
		lit = append(lit, l.String())
	}
	if len(lit) == 0 {
		lit = []string{"none"}
	}
	fmt.Fprintf(out, "lit: %s\n", strings.Join(lit, " "))
}
