package cmd

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/bpradana/subscribeon"
	"github.com/bpradana/subscribeon/rx"
)

var runTimeout time.Duration

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Decorate demo calls and report the scheduler each one ran on",
	Long: `run decorates one demo call per configured method (or per strategy when the
config names no methods), subscribes to the returned container and prints the
scheduler that executed it. An unannotated call is included to show pass-through.`,
	RunE: runDemo,
}

func init() {
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 5*time.Second, "how long to wait for each container")
}

type demoCall struct {
	method   string
	strategy string
	options  []subscribeon.MethodOption
}

func runDemo(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadSettings()
	if err != nil {
		return err
	}

	metrics, err := subscribeon.NewMetrics(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	var (
		mu       sync.Mutex
		outcomes = make(map[string]subscribeon.Outcome)
	)
	in := subscribeon.New(
		subscribeon.WithLogger(logger),
		subscribeon.WithRegistry(cfg.Registry()),
		subscribeon.WithHooks(metrics.Hooks()),
		subscribeon.WithHooks(subscribeon.Hooks{
			OnFinish: func(_ context.Context, event subscribeon.CallEvent) {
				mu.Lock()
				outcomes[event.Method] = event.Outcome
				mu.Unlock()
			},
		}),
	)

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Method", "Strategy", "Ran On", "Outcome")

	for _, call := range demoCalls(cfg) {
		ranOn, err := runOne(cmd.Context(), in, call)
		if err != nil {
			ranOn = "error: " + err.Error()
		}
		mu.Lock()
		outcome := outcomes[call.method]
		mu.Unlock()
		if err := table.Append([]string{call.method, call.strategy, ranOn, string(outcome)}); err != nil {
			return err
		}
	}
	return table.Render()
}

func demoCalls(cfg subscribeon.Config) []demoCall {
	var calls []demoCall
	if len(cfg.Methods) == 0 {
		for _, s := range subscribeon.Strategies() {
			calls = append(calls, demoCall{
				method:   "demo-" + s.String(),
				strategy: s.String(),
				options:  []subscribeon.MethodOption{subscribeon.Annotated(s)},
			})
		}
	} else {
		names := make([]string, 0, len(cfg.Methods))
		for name := range cfg.Methods {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			calls = append(calls, demoCall{method: name, strategy: cfg.Methods[name].String()})
		}
	}
	return append(calls, demoCall{method: "unannotated", strategy: "-"})
}

func runOne(ctx context.Context, in *subscribeon.Interceptor, call demoCall) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	decorated := subscribeon.Decorate(in, call.method, func(context.Context) (*rx.Single[string], error) {
		return rx.FromFunc(func(ctx context.Context) (string, error) {
			if name := rx.SchedulerName(ctx); name != "" {
				return name, nil
			}
			return "caller", nil
		}), nil
	}, call.options...)

	single, err := decorated(ctx)
	if err != nil {
		return "", err
	}
	waitCtx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()
	return single.Get(waitCtx)
}
