package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	uthreads "github.com/joeycumines/go-uthreads"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/spf13/cobra"
)

type config struct {
	logLevel   string
	quantum    int
	threads    int
	iterations int
	sleep      int
	maxThreads int
	wallClock  bool
	// exit replaces os.Exit as the scheduler's exit hook, if set
	exit func(code int)
}

func newRootCmd() *cobra.Command {
	var cfg config

	root := &cobra.Command{
		Use:   "uthreads-demo",
		Short: "Run CPU-bound green threads under a round-robin scheduler",
		Long: `uthreads-demo spawns worker threads that compute in a loop, calling
Checkpoint so they may be preempted. The first worker sleeps part way
through, and the second blocks itself, to be resumed by the main thread.
Per-thread quantum counts are printed once every worker has finished.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), cfg)
		},
	}

	root.Flags().IntVar(&cfg.quantum, "quantum", 10_000, "Quantum length in microseconds")
	root.Flags().IntVar(&cfg.threads, "threads", 4, "Number of worker threads")
	root.Flags().IntVar(&cfg.iterations, "iterations", 2000, "Work iterations per worker")
	root.Flags().IntVar(&cfg.sleep, "sleep", 5, "Quanta the first worker sleeps for")
	root.Flags().IntVar(&cfg.maxThreads, "max-threads", uthreads.DefaultMaxThreads, "Maximum number of live threads, including main")
	root.Flags().StringVar(&cfg.logLevel, "log-level", "warning", "Log level (debug, info, notice, warning, err, crit)")
	root.Flags().BoolVar(&cfg.wallClock, "wall-clock", false, "Measure quanta in wall-clock time, instead of process CPU time")

	return root
}

func parseLevel(s string) (logiface.Level, error) {
	for level := logiface.LevelEmergency; level <= logiface.LevelTrace; level++ {
		if strings.EqualFold(s, level.String()) {
			return level, nil
		}
	}
	return logiface.LevelDisabled, fmt.Errorf("unknown log level %q", s)
}

type result struct {
	id       int
	quantums int
}

func run(out io.Writer, cfg config) error {
	if cfg.threads < 1 {
		return fmt.Errorf("--threads must be at least 1")
	}
	level, err := parseLevel(cfg.logLevel)
	if err != nil {
		return err
	}

	opts := []uthreads.Option{
		uthreads.WithMaxThreads(cfg.maxThreads),
		uthreads.WithMetrics(true),
		uthreads.WithLogger(stumpy.L.New(
			stumpy.L.WithStumpy(stumpy.WithWriter(os.Stderr)),
			stumpy.L.WithLevel(level),
		).Logger()),
	}
	if cfg.wallClock {
		opts = append(opts, uthreads.WithWallClockTimer())
	}
	if cfg.exit != nil {
		opts = append(opts, uthreads.WithExitFunc(cfg.exit))
	}

	s, err := uthreads.Init(cfg.quantum, opts...)
	if err != nil {
		return err
	}

	// only the baton holder touches these
	var (
		results []result
		blocker = -1
	)

	for i := 0; i < cfg.threads; i++ {
		index := i
		id, err := s.Spawn(func() {
			var sum uint64
			for n := 0; n < cfg.iterations; n++ {
				sum += work(n)
				if n == cfg.iterations/2 {
					switch index {
					case 0:
						_ = s.Sleep(cfg.sleep)
					case 1:
						_ = s.Block(s.GetTid())
					}
				}
				s.Checkpoint()
			}
			q, _ := s.GetQuantums(s.GetTid())
			results = append(results, result{id: s.GetTid(), quantums: q})
			_ = sum
		})
		if err != nil {
			return err
		}
		if index == 1 {
			blocker = id
		}
	}

	for len(results) < cfg.threads {
		if blocker >= 0 {
			if state, err := s.ThreadState(blocker); err == nil && state == uthreads.ThreadBlocked {
				_ = s.Resume(blocker)
			}
		}
		work(0)
		s.Checkpoint()
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TID\tQUANTA")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\n", r.id, r.quantums)
	}
	if q, err := s.GetQuantums(0); err == nil {
		fmt.Fprintf(w, "%d\t%d\n", 0, q)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	m := s.Metrics()
	fmt.Fprintf(out, "total quanta: %d\n", s.GetTotalQuantums())
	fmt.Fprintf(out, "dispatches: %d (preempt %d, yield %d, suspend %d, exit %d)\n",
		m.Dispatches, m.Preemptions, m.Yields, m.Suspensions, m.Exits)
	fmt.Fprintf(out, "quantum p50=%s p99=%s max=%s\n", m.Quantum.P50, m.Quantum.P99, m.Quantum.Max)

	// ends the process, unless cfg.exit returns
	return s.Terminate(0)
}

// work burns some CPU.
func work(seed int) uint64 {
	x := uint64(seed) | 1
	for i := 0; i < 10_000; i++ {
		x ^= x << 13
		x ^= x >> 7
		x ^= x << 17
	}
	return x
}
