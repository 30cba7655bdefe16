package ltest

import (
	"fmt"
	"io"
	"os"

	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"

	"github.com/dmitrii-artuhov/ltest/coro"
	"github.com/dmitrii-artuhov/ltest/history"
	"github.com/dmitrii-artuhov/ltest/lincheck"
	"github.com/dmitrii-artuhov/ltest/minimize"
	"github.com/dmitrii-artuhov/ltest/sched"
	"github.com/dmitrii-artuhov/ltest/strategy"
)

// Spec pairs the system under test with its sequential reference semantics.
type Spec struct {
	// Target is the concurrent implementation being verified. Reset
	// restores it between rounds.
	Target strategy.Target

	// Methods is the sequential semantics, one entry per registered method
	// name.
	Methods lincheck.MethodMap

	// Initial is the reference state a fresh target corresponds to.
	Initial lincheck.State

	// Options, if set, overrides the flag defaults for this target.
	Options *Opts
}

// MakeStrategy builds the strategy selected by opts over the registered
// builders.
func MakeStrategy(target strategy.Target, builders []coro.Builder, opts Opts) (strategy.Strategy, error) {
	switch opts.Strategy {
	case StrategyRoundRobin:
		return strategy.NewRoundRobin(target, opts.Threads, builders, opts.Seed), nil
	case StrategyRandom:
		return strategy.NewRandom(target, opts.Threads, builders, opts.Weights, opts.Seed)
	case StrategyPCT:
		return strategy.NewPCT(target, opts.Threads, builders, strategy.PCTConfig{
			ForbidAllSame: opts.ForbidAllSame,
			Seed:          opts.Seed,
		}), nil
	default:
		return nil, fmt.Errorf(`ltest: unknown strategy %q`, opts.Strategy)
	}
}

// MakeScheduler builds the scheduler selected by opts: the strategy-driven
// driver with the standard shrinking pipeline, or the enumerative TLA
// scheduler.
func MakeScheduler(spec Spec, builders []coro.Builder, opts Opts, log *logiface.Logger[logiface.Event]) (sched.Scheduler, error) {
	checker := lincheck.NewChecker(spec.Methods, spec.Initial)

	if opts.Strategy == StrategyTLA {
		return sched.NewTLA(spec.Target, builders, checker, sched.TLAConfig{
			MaxTasks:    opts.Tasks,
			MaxRounds:   opts.Rounds,
			Threads:     opts.Threads,
			MaxSwitches: opts.Switches,
			Logger:      log,
		}), nil
	}

	strat, err := MakeStrategy(spec.Target, builders, opts)
	if err != nil {
		return nil, err
	}
	return sched.NewStrategyScheduler(strat, checker, sched.Config{
		MaxTasks:  opts.Tasks,
		MaxRounds: opts.Rounds,
		Minimizors: []sched.Minimizor{
			minimize.NewSameInterleaving(),
			minimize.NewStrategyExploration(opts.MinimizationRuns),
			minimize.NewSmart(minimize.SmartConfig{
				Runs:            opts.MinimizationRuns,
				ExplorationRuns: opts.MinimizationRuns,
				Seed:            opts.Seed,
			}),
		},
		Logger: log,
	}), nil
}

// NewLogger builds the engine's logger: console-rendered zerolog behind the
// logiface facade, debug level when verbose.
func NewLogger(w io.Writer, verbose bool) *logiface.Logger[logiface.Event] {
	level := logiface.LevelWarning
	if verbose {
		level = logiface.LevelDebug
	}
	zl := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).With().Timestamp().Logger()
	return logiface.New(
		izerolog.WithZerolog(zl),
		logiface.WithLevel[*izerolog.Event](level),
	).Logger()
}

// Run parses os.Args, runs the campaign against spec and reports. The exit
// code is 0 when every round within the budget was linearizable, 1 when a
// counterexample was found, and 2 on configuration or runtime errors.
func Run(spec Spec) int {
	defaults := DefaultOpts()
	if spec.Options != nil {
		defaults = *spec.Options
	}
	opts, err := ParseOptsWith(defaults, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return RunWith(os.Stdout, spec, opts)
}

// RunWith runs the campaign with explicit options, writing the report to w.
func RunWith(w io.Writer, spec Spec, opts Opts) int {
	if err := opts.Validate(); err != nil {
		fmt.Fprintln(w, err)
		return 2
	}

	log := NewLogger(w, opts.Verbose)
	builders := Builders()
	if len(builders) == 0 {
		fmt.Fprintln(w, `ltest: no registered target methods`)
		return 2
	}

	fmt.Fprintf(w, "strategy = %s\n", opts.Strategy)
	fmt.Fprintf(w, "threads  = %d\n", opts.Threads)
	fmt.Fprintf(w, "tasks    = %d\n", opts.Tasks)
	fmt.Fprintf(w, "switches = %d\n", opts.Switches)
	fmt.Fprintf(w, "rounds   = %d\n", opts.Rounds)
	fmt.Fprintf(w, "targets  = %d\n", len(builders))

	scheduler, err := MakeScheduler(spec, builders, opts, log)
	if err != nil {
		fmt.Fprintln(w, err)
		return 2
	}

	result, err := scheduler.Run()
	if err != nil {
		fmt.Fprintf(w, "runtime error: %v\n", err)
		return 2
	}
	if result != nil {
		fmt.Fprintln(w, `non linearized:`)
		history.NewPrinter(opts.Threads).Print(w, result.Seq)
		return 1
	}
	fmt.Fprintln(w, `success!`)
	return 0
}
