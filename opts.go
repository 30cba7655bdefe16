package ltest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"
)

// Strategy selector literals accepted by --strategy.
const (
	StrategyRoundRobin = `rr`
	StrategyRandom     = `random`
	StrategyTLA        = `tla`
	StrategyPCT        = `pct`
)

// Opts carries the run configuration. The zero value is not usable; start
// from DefaultOpts or ParseOpts.
type Opts struct {
	// Threads is the number of thread slots.
	Threads int
	// Tasks is the number of finished tasks that completes a round.
	Tasks int
	// Switches bounds preemptions (TLA strategy only).
	Switches int
	// Rounds is the maximum number of rounds to try.
	Rounds int
	// Strategy selects the scheduling strategy.
	Strategy string
	// Weights are the per-thread weights of the random strategy. Empty
	// means all ones.
	Weights []int
	// MinimizationRuns is the exploration budget of the shrinking stages.
	MinimizationRuns int
	// ForbidAllSame forbids PCT rounds running the same method on every
	// thread.
	ForbidAllSame bool
	// Verbose enables per-round progress logging.
	Verbose bool
	// Seed seeds strategy and minimizor randomness; zero draws from the
	// clock.
	Seed int64
}

// DefaultOpts returns the documented defaults.
func DefaultOpts() Opts {
	return Opts{
		Threads:          2,
		Tasks:            15,
		Switches:         100000000,
		Rounds:           5,
		Strategy:         StrategyRoundRobin,
		MinimizationRuns: 10,
	}
}

// ParseOpts parses command-line arguments into an Opts, starting from the
// documented defaults and validating the result. All configuration problems
// are reported together.
func ParseOpts(args []string) (Opts, error) {
	return ParseOptsWith(DefaultOpts(), args)
}

// ParseOptsWith parses command-line arguments over caller-supplied
// defaults, which is how a specification overrides flag defaults.
func ParseOptsWith(defaults Opts, args []string) (Opts, error) {
	opts := defaults
	var weights string

	fs := pflag.NewFlagSet(`ltest`, pflag.ContinueOnError)
	fs.IntVar(&opts.Threads, `threads`, opts.Threads, `number of thread slots`)
	fs.IntVar(&opts.Tasks, `tasks`, opts.Tasks, `tasks per round`)
	fs.IntVar(&opts.Switches, `switches`, opts.Switches, `preemption bound (tla strategy)`)
	fs.IntVar(&opts.Rounds, `rounds`, opts.Rounds, `max rounds to try`)
	fs.StringVar(&opts.Strategy, `strategy`, opts.Strategy, `strategy: rr|random|tla|pct`)
	fs.StringVar(&weights, `weights`, ``, `comma-separated per-thread weights (random strategy)`)
	fs.IntVar(&opts.MinimizationRuns, `minimization-runs`, opts.MinimizationRuns, `exploration budget per shrinking stage`)
	fs.BoolVar(&opts.ForbidAllSame, `forbid-all-same`, opts.ForbidAllSame, `forbid rounds running the same method on every thread (pct)`)
	fs.BoolVarP(&opts.Verbose, `verbose`, `v`, opts.Verbose, `verbose logging`)
	fs.Int64Var(&opts.Seed, `seed`, opts.Seed, `random seed (0 draws from the clock)`)

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if weights != `` {
		opts.Weights = nil
		for _, s := range strings.Split(weights, `,`) {
			w, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return opts, fmt.Errorf(`ltest: invalid weight %q: %w`, s, err)
			}
			opts.Weights = append(opts.Weights, w)
		}
	}
	return opts, opts.Validate()
}

// Validate reports every configuration problem at once.
func (o Opts) Validate() error {
	var errs *multierror.Error
	if o.Threads <= 0 {
		errs = multierror.Append(errs, fmt.Errorf(`ltest: threads must be positive, got %d`, o.Threads))
	}
	if o.Tasks <= 0 {
		errs = multierror.Append(errs, fmt.Errorf(`ltest: tasks must be positive, got %d`, o.Tasks))
	}
	if o.Rounds <= 0 {
		errs = multierror.Append(errs, fmt.Errorf(`ltest: rounds must be positive, got %d`, o.Rounds))
	}
	switch o.Strategy {
	case StrategyRoundRobin, StrategyRandom, StrategyTLA, StrategyPCT:
	default:
		errs = multierror.Append(errs, fmt.Errorf(`ltest: unknown strategy %q`, o.Strategy))
	}
	if len(o.Weights) != 0 {
		if o.Strategy != StrategyRandom {
			errs = multierror.Append(errs, fmt.Errorf(`ltest: weights only apply to the random strategy`))
		} else if len(o.Weights) != o.Threads {
			errs = multierror.Append(errs, fmt.Errorf(`ltest: %d weights for %d threads`, len(o.Weights), o.Threads))
		}
	}
	return errs.ErrorOrNil()
}
