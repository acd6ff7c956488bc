package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/agrovoo/internal/clock"
	"github.com/kingrea/agrovoo/internal/splash"
)

var splashCmd = &cobra.Command{
	Use:   "splash",
	Short: "Play the intro animation headless and print its timeline",
	Long: `Runs the intro sequence with the configured timings and prints a line
for every stage change and every scan status change. Interrupting the
command tears the run down.`,
	Args: cobra.NoArgs,
	RunE: runSplash,
}

func runSplash(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	player, err := newSplashPlayer(cmd.OutOrStdout(), clock.Real(),
		splash.WithTimings(cfg.App.Splash.Timings),
		splash.WithPlantCount(cfg.App.Splash.Plants),
		splash.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	completed, err := player.play(ctx, nil)
	if err != nil {
		return err
	}
	logger.Info("splash: headless run finished", zap.Bool("completed", completed))
	return nil
}

type splashPlayer struct {
	seq *splash.Sequencer
	out io.Writer

	// The observer runs under the run lock, so it only queues frames and
	// pokes ready. The queue is unbounded so no stage line is lost.
	mu    sync.Mutex
	queue []splash.Frame
	ready chan struct{}

	started   time.Time
	lastStage splash.Stage
	lastMsg   string
	printed   bool
}

func newSplashPlayer(out io.Writer, c clock.Clock, opts ...splash.Option) (*splashPlayer, error) {
	p := &splashPlayer{
		out:   out,
		ready: make(chan struct{}, 1),
	}
	seqOpts := append([]splash.Option{
		splash.WithClock(c),
		splash.WithObserver(p.enqueue),
	}, opts...)
	seq, err := splash.New(seqOpts...)
	if err != nil {
		return nil, fmt.Errorf("splash: %w", err)
	}
	p.seq = seq
	return p, nil
}

func (p *splashPlayer) enqueue(f splash.Frame) {
	p.mu.Lock()
	p.queue = append(p.queue, f)
	p.mu.Unlock()
	select {
	case p.ready <- struct{}{}:
	default:
	}
}

func (p *splashPlayer) flush() error {
	p.mu.Lock()
	frames := p.queue
	p.queue = nil
	p.mu.Unlock()
	for _, f := range frames {
		if err := p.print(f); err != nil {
			return err
		}
	}
	return nil
}

// play runs one sequence to completion or until ctx is done. started, if
// set, is called right after the run begins.
func (p *splashPlayer) play(ctx context.Context, started func(*splash.Run)) (bool, error) {
	done := make(chan struct{})
	run := p.seq.Start(func() { close(done) })
	fmt.Fprintf(p.out, "run %d: %d plants, %s total\n", run.ID(), len(run.Plants()), p.seq.Timings().Total())
	if started != nil {
		started(run)
	}
	for {
		select {
		case <-p.ready:
			if err := p.flush(); err != nil {
				p.seq.Cancel(run)
				return false, err
			}
		case <-done:
			if err := p.flush(); err != nil {
				return true, err
			}
			_, err := fmt.Fprintln(p.out, "splash completed")
			return true, err
		case <-ctx.Done():
			p.seq.Cancel(run)
			_, err := fmt.Fprintf(p.out, "splash canceled during %s\n", run.Stage())
			return false, err
		}
	}
}

// print writes a line when the stage or the scan status line changes.
// Stage lines carry the time since the run began.
func (p *splashPlayer) print(f splash.Frame) error {
	if !p.printed {
		p.started = f.StageEntered
	} else if f.Stage == p.lastStage && f.Message == p.lastMsg {
		return nil
	}
	stageChanged := !p.printed || f.Stage != p.lastStage
	p.printed = true
	p.lastStage = f.Stage
	p.lastMsg = f.Message

	var err error
	switch {
	case stageChanged && f.Message != "":
		_, err = fmt.Fprintf(p.out, "%8.3fs  %-16s %3.0f%%  %s\n", f.StageEntered.Sub(p.started).Seconds(), f.Stage, f.Progress, f.Message)
	case stageChanged:
		_, err = fmt.Fprintf(p.out, "%8.3fs  %s\n", f.StageEntered.Sub(p.started).Seconds(), f.Stage)
	default:
		_, err = fmt.Fprintf(p.out, "%10s  %-16s %3.0f%%  %s\n", "", "", f.Progress, f.Message)
	}
	return err
}
