package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vnykmshr/fanout/internal/ops"
	"github.com/vnykmshr/fanout/internal/output"
	"github.com/vnykmshr/fanout/internal/source"
	"github.com/vnykmshr/fanout/pkg/metrics"
	"github.com/vnykmshr/fanout/pkg/parallel"
	"github.com/vnykmshr/fanout/pkg/scheduling/scheduler"
	"github.com/vnykmshr/fanout/pkg/scheduling/workerpool"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run --op <name> [element]...",
		Short: "Run an operation over a collection",
		Long: `Run applies the named operation to every element of a collection.

Elements are taken from the command arguments, from --input (a file, or "-"
for stdin) or from the Redis list named by --redis-key. Results are printed in
the chosen output format and can also be written to a Redis list.

Without --preserve-order, results follow the round-robin partition order: with
3 workers, elements 0..7 come back as 0,3,6,1,4,7,2,5.`,
		Example: `  # Upper-case three words with 2 workers
  fanout run --op upper --cpu 2 alpha beta gamma

  # Hash every line of a file, keeping input order
  fanout run --op sha256 --input words.txt --preserve-order

  # Probe URLs from a Redis list every minute and store the status codes
  fanout run --op http-status --redis-key urls --redis-out-key statuses --schedule "@every 1m"

  # Repeat each element twice, joined by a dash
  fanout run --op repeat --arg 2 --set sep=- a b c`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRun(cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.String("op", "", "operation to apply (see 'fanout ops')")
	flags.StringP("input", "i", "", `input file, or "-" for stdin`)
	flags.String("input-format", "", "input format (text, json, yaml, toml); detected from the file extension by default")
	flags.String("redis-key", "", "read elements from this Redis list")
	flags.String("redis-out-key", "", "write results to this Redis list")
	flags.Duration("redis-ttl", 0, "expire the result list after this long (0 keeps it)")
	flags.StringArray("arg", nil, "positional argument passed to the operation (repeatable)")
	flags.StringArray("set", nil, "named argument key=value passed to the operation (repeatable)")
	flags.Int("cpu", 0, "number of isolated workers (0 means the number of CPUs)")
	flags.Int("threads", parallel.DefaultThreadCount, "concurrent calls per worker")
	flags.String("codec", "gob", "codec used to copy work into workers (gob, json, yaml)")
	flags.Bool("preserve-order", false, "return results in input order")
	flags.String("name", "fanout", "run name used in logs and metrics")
	flags.String("schedule", "", "repeat the run on a cron schedule until interrupted")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")

	bind(a.v, flags, map[string]string{
		"cpu":            "run.cpu",
		"threads":        "run.threads",
		"codec":          "run.codec",
		"preserve-order": "run.preserve-order",
		"name":           "run.name",
		"schedule":       "run.schedule",
		"metrics-addr":   "metrics.addr",
		"redis-ttl":      "redis.ttl",
	})

	return cmd
}

// job is one fully configured run.
type job struct {
	op       ops.Op
	elements []string
	input    string
	format   string
	redisIn  string
	redisOut string
	redisTTL time.Duration
	execArgs []parallel.Arg
	config   parallel.Config
	out      output.Formatter
	rdb      redis.UniversalClient
}

func (a *app) runRun(cmd *cobra.Command, args []string) error {
	j, err := a.newJob(cmd, args)
	if err != nil {
		return err
	}
	if j.rdb != nil {
		defer j.rdb.Close()
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	if addr := a.v.GetString("metrics.addr"); addr != "" {
		reg := prometheus.NewRegistry()
		j.config.Metrics = metrics.Config{Enabled: true, Registry: reg}
		a.serveMetrics(ctx, g, addr, reg)
	}

	g.Go(func() error {
		// Stops the metrics server once the work is done.
		defer cancel()

		if expr := a.v.GetString("run.schedule"); expr != "" {
			return a.runScheduled(ctx, cmd, j, expr)
		}
		return j.runOnce(ctx, cmd)
	})

	return g.Wait()
}

func (a *app) newJob(cmd *cobra.Command, args []string) (*job, error) {
	flags := cmd.Flags()

	opName, _ := flags.GetString("op")
	if opName == "" {
		return nil, fmt.Errorf("--op is required (run 'fanout ops' to list operations)")
	}
	op, err := ops.Lookup(opName)
	if err != nil {
		return nil, err
	}

	format, err := output.ParseFormat(a.v.GetString("output"))
	if err != nil {
		return nil, err
	}
	codec, err := parallel.CodecByName(a.v.GetString("run.codec"))
	if err != nil {
		return nil, err
	}

	positional, _ := flags.GetStringArray("arg")
	sets, _ := flags.GetStringArray("set")
	named, err := parseSettings(sets)
	if err != nil {
		return nil, err
	}

	execArgs := make([]parallel.Arg, 0, 1+len(named))
	if len(positional) > 0 {
		values := make([]any, len(positional))
		for i, p := range positional {
			values[i] = p
		}
		execArgs = append(execArgs, parallel.Pos(values...))
	}
	for k, v := range named {
		execArgs = append(execArgs, parallel.Kw(k, v))
	}

	j := &job{
		op:       op,
		elements: args,
		execArgs: execArgs,
		redisTTL: a.v.GetDuration("redis.ttl"),
		out:      output.NewFormatter(format, output.WithNoColor(a.v.GetBool("no-color"))),
		config: parallel.Config{
			CPUCount:      a.v.GetInt("run.cpu"),
			ThreadCount:   a.v.GetInt("run.threads"),
			Codec:         codec,
			PreserveOrder: a.v.GetBool("run.preserve-order"),
			Logger:        a.logger,
			Name:          a.v.GetString("run.name"),
		},
	}
	j.input, _ = flags.GetString("input")
	j.format, _ = flags.GetString("input-format")
	j.redisIn, _ = flags.GetString("redis-key")
	j.redisOut, _ = flags.GetString("redis-out-key")

	sources := 0
	for _, set := range []bool{len(args) > 0, j.input != "", j.redisIn != ""} {
		if set {
			sources++
		}
	}
	switch {
	case sources == 0:
		return nil, fmt.Errorf("no input: pass elements as arguments, --input or --redis-key")
	case sources > 1:
		return nil, fmt.Errorf("choose one input: arguments, --input or --redis-key")
	}

	if j.redisIn != "" || j.redisOut != "" {
		j.rdb = redis.NewClient(&redis.Options{
			Addr:     a.v.GetString("redis.addr"),
			Password: a.v.GetString("redis.password"),
			DB:       a.v.GetInt("redis.db"),
		})
	}

	return j, nil
}

// load returns the collection and a description of where it came from.
func (j *job) load(ctx context.Context, cmd *cobra.Command) ([]string, string, error) {
	switch {
	case j.input == "-":
		format, err := source.ParseFormat(j.format)
		if err != nil {
			return nil, "", err
		}
		items, err := source.Load(cmd.InOrStdin(), format)
		return items, "stdin", err

	case j.input != "":
		if j.format == "" {
			items, err := source.LoadFile(j.input)
			return items, j.input, err
		}
		format, err := source.ParseFormat(j.format)
		if err != nil {
			return nil, "", err
		}
		f, err := os.Open(j.input)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		items, err := source.Load(f, format)
		return items, j.input, err

	case j.redisIn != "":
		list, err := source.NewRedisList(source.RedisConfig{Redis: j.rdb, Key: j.redisIn})
		if err != nil {
			return nil, "", err
		}
		items, err := list.Load(ctx)
		return items, "redis:" + j.redisIn, err

	default:
		return j.elements, "", nil
	}
}

// runOnce loads the collection, runs the operation and emits the results.
func (j *job) runOnce(ctx context.Context, cmd *cobra.Command) error {
	items, from, err := j.load(ctx, cmd)
	if err != nil {
		return err
	}

	start := time.Now()
	results, err := parallel.New(j.op.Fn, items, j.execArgs...).RunWithConfig(ctx, j.config)
	if err != nil {
		return fmt.Errorf("op %s failed: %w", j.op.Name, err)
	}

	report := output.Report{
		Op:       j.op.Name,
		Source:   from,
		Duration: time.Since(start),
		Results:  results,
	}
	if j.config.PreserveOrder {
		report.Inputs = items
	}
	if err := j.out.Format(cmd.OutOrStdout(), report); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if j.redisOut != "" {
		list, err := source.NewRedisList(source.RedisConfig{Redis: j.rdb, Key: j.redisOut, TTL: j.redisTTL})
		if err != nil {
			return err
		}
		if err := list.Store(ctx, results); err != nil {
			return err
		}
	}
	return nil
}

// runScheduled repeats the job on a cron schedule until ctx is done.
func (a *app) runScheduled(ctx context.Context, cmd *cobra.Command, j *job, expr string) error {
	s := scheduler.NewWithConfig(scheduler.Config{
		Logger:  a.logger,
		Metrics: j.config.Metrics,
	})

	task := workerpool.TaskFunc(func(ctx context.Context) error {
		return j.runOnce(ctx, cmd)
	})
	if err := s.ScheduleCron(j.config.Name, expr, task); err != nil {
		return err
	}
	if err := s.Start(); err != nil {
		return err
	}

	next, _ := s.Next(j.config.Name)
	a.logger.Info("scheduled run", "schedule", expr, "next", next.Format(time.RFC3339))

	<-ctx.Done()
	<-s.Stop()
	return nil
}

// serveMetrics exposes reg on addr until ctx is done.
func (a *app) serveMetrics(ctx context.Context, g *errgroup.Group, addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g.Go(func() error {
		a.logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
