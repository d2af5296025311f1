package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hupe1980/domarch"
	"github.com/hupe1980/domarch/blobstore"
	"github.com/hupe1980/domarch/blobstore/location"
	"github.com/hupe1980/domarch/config"
	"github.com/hupe1980/domarch/hitio"
	"github.com/hupe1980/domarch/metric"
)

type resolveOptions struct {
	cfg *config.Config

	configPath    string
	output        string
	metricsAddr   string
	worstBitscore float64
	worstScore    float64
}

func newResolveCmd() *cobra.Command {
	o := &resolveOptions{cfg: config.Default()}

	cmd := &cobra.Command{
		Use:   "resolve [input]",
		Short: "Resolve the hits of every query in a hit file",
		Long: `Resolve reads hits grouped by query and writes the best scoring set of
non-overlapping hits for each query.

The input and --output may be a local path, file://path, s3://bucket/key,
minio://endpoint/bucket/key or "-" for standard input/output. A .zst or .lz4
suffix selects compression. Flags override values from --config.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			if err := o.load(cmd.Flags()); err != nil {
				return err
			}
			return o.run(cmd, input)
		},
	}

	f := cmd.Flags()
	c := o.cfg
	f.StringVar(&o.configPath, "config", "", "YAML configuration file")
	f.StringVarP(&o.output, "output", "o", "-", "output location")
	f.StringVar(&o.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")

	f.StringVar(&c.Input.Format, "input-format", c.Input.Format, "input format: raw_with_scores, raw_with_evalues or domtblout")
	f.StringVar(&c.Input.ScoreKind, "score-kind", c.Input.ScoreKind, "score kind of raw_with_scores input: score or bitscore")
	f.StringVar(&c.Output.Format, "output-format", c.Output.Format, "output format: text, json or summary")
	f.StringVar(&c.Output.Codec, "json-codec", c.Output.Codec, "JSON codec: json or go-json")

	f.StringVar(&c.Segments.Trim, "overlap-trim", c.Segments.Trim, "segment trimming as full-length/total-trimming")
	f.IntVar(&c.Segments.MinSegLength, "min-seg-length", c.Segments.MinSegLength, "drop trimmed segments shorter than this")

	f.Float64Var(&c.Filter.WorstEvalue, "worst-permissible-evalue", c.Filter.WorstEvalue, "ignore hits with a worse e-value")
	f.Float64Var(&o.worstBitscore, "worst-permissible-bitscore", 0, "ignore hits with a worse bitscore")
	f.Float64Var(&o.worstScore, "worst-permissible-score", 0, "ignore hits with a worse score")
	f.StringSliceVar(&c.Filter.QueryIDs, "query-id", c.Filter.QueryIDs, "only resolve these queries (repeatable)")
	f.IntVar(&c.Filter.LimitQueries, "limit-queries", c.Filter.LimitQueries, "only resolve the first N queries")
	f.Float64Var(&c.Filter.MinHMMCoveragePercent, "min-hmm-coverage", c.Filter.MinHMMCoveragePercent, "minimum HMM coverage percentage")
	f.Float64Var(&c.Filter.MinDCHMMCoveragePercent, "min-dc-hmm-coverage", c.Filter.MinDCHMMCoveragePercent, "minimum HMM coverage percentage for discontinuous domains")
	f.BoolVar(&c.Filter.PruneRedundant, "prune-redundant", c.Filter.PruneRedundant, "drop hits dominated by a better hit (optimal mode)")

	f.Float64Var(&c.Score.LongDomainsPreference, "long-domains-preference", c.Score.LongDomainsPreference, "preference for longer hits in [-100, 100]")
	f.Float64Var(&c.Score.HighScoresPreference, "high-scores-preference", c.Score.HighScoresPreference, "preference for higher scores in [-100, 100]")
	f.BoolVar(&c.Score.ApplyCATHRules, "apply-cath-rules", c.Score.ApplyCATHRules, "apply the CATH rules for discontinuous domains")

	f.StringVar(&c.Resolve.Mode, "mode", c.Resolve.Mode, "optimal or naive-greedy")
	f.IntVar(&c.Resolve.Workers, "workers", c.Resolve.Workers, "queries resolved concurrently (0 = GOMAXPROCS)")
	f.Float64Var(&c.Resolve.QueriesPerSecond, "qps", c.Resolve.QueriesPerSecond, "maximum queries scheduled per second (0 = unlimited)")

	f.Int64Var(&c.Resources.MemoryLimitBytes, "memory-limit", c.Resources.MemoryLimitBytes, "bytes of hits buffered at once (0 = unlimited)")
	f.Int64Var(&c.Resources.MaxInFlightQueries, "max-in-flight", c.Resources.MaxInFlightQueries, "queries buffered at once (0 = 4 x workers)")
	f.Int64Var(&c.Resources.IOLimitBytesPerSec, "io-limit", c.Resources.IOLimitBytesPerSec, "bytes read or written per second (0 = unlimited)")

	f.StringVar(&c.Storage.Region, "region", c.Storage.Region, "AWS region for s3:// locations")
	f.StringVar(&c.Storage.S3Endpoint, "s3-endpoint", c.Storage.S3Endpoint, "S3 compatible endpoint URL")
	f.BoolVar(&c.Storage.MinioSecure, "minio-secure", c.Storage.MinioSecure, "use HTTPS for minio:// locations")

	f.StringVar(&c.Log.Level, "log-level", c.Log.Level, "debug, info, warn or error")
	f.StringVar(&c.Log.Format, "log-format", c.Log.Format, "text or json")

	return cmd
}

// load merges the config file, if any, under the flags that were set.
func (o *resolveOptions) load(fs *pflag.FlagSet) error {
	if o.configPath != "" {
		scalars := map[string]string{}
		slices := map[string][]string{}
		fs.Visit(func(f *pflag.Flag) {
			if sv, ok := f.Value.(pflag.SliceValue); ok {
				slices[f.Name] = sv.GetSlice()
				return
			}
			scalars[f.Name] = f.Value.String()
		})

		fileCfg, err := config.Load(o.configPath)
		if err != nil {
			return err
		}
		*o.cfg = *fileCfg

		var errs []error
		fs.Visit(func(f *pflag.Flag) {
			if sv, ok := f.Value.(pflag.SliceValue); ok {
				errs = append(errs, sv.Replace(slices[f.Name]))
				return
			}
			errs = append(errs, f.Value.Set(scalars[f.Name]))
		})
		if err := errors.Join(errs...); err != nil {
			return err
		}
	}

	if fs.Changed("worst-permissible-bitscore") {
		o.cfg.Filter.WorstBitscore = &o.worstBitscore
	}
	if fs.Changed("worst-permissible-score") {
		o.cfg.Filter.WorstScore = &o.worstScore
	}
	return o.cfg.Validate()
}

func (o *resolveOptions) run(cmd *cobra.Command, input string) (err error) {
	ctx := cmd.Context()
	cfg := o.cfg

	inFmt, err := cfg.InputFormat()
	if err != nil {
		return err
	}
	outFmt, err := cfg.OutputFormat()
	if err != nil {
		return err
	}

	logger := cfg.Logger(cmd.ErrOrStderr())
	rc := cfg.Controller()
	engOpts, err := cfg.EngineOptions(rc, logger)
	if err != nil {
		return err
	}

	if o.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		pc, err := metric.NewPrometheusCollector(reg)
		if err != nil {
			return err
		}
		stop, err := serveMetrics(o.metricsAddr, reg)
		if err != nil {
			return err
		}
		defer stop()
		engOpts = append(engOpts, domarch.WithMetricsCollector(pc))
	}

	eng, err := domarch.New(engOpts...)
	if err != nil {
		return err
	}
	defer eng.Close()

	locCfg := cfg.LocationConfig(rc)
	locCfg.Stdin = cmd.InOrStdin()
	locCfg.Stdout = cmd.OutOrStdout()
	resolver := location.NewResolver(locCfg)

	in, err := resolver.OpenReader(ctx, input)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := resolver.CreateWriter(ctx, o.output)
	if err != nil {
		return err
	}
	w, err := hitio.NewWriter(out, outFmt, hitio.WriterOptions{
		Codec:     cfg.Codec(),
		Counts:    eng.Summary,
		Generator: "domarch " + buildVersion(),
	})
	if err != nil {
		return errors.Join(err, out.Close())
	}
	defer func() {
		if a, ok := out.(blobstore.Aborter); ok && err != nil {
			err = errors.Join(err, a.Abort())
			return
		}
		err = errors.Join(err, w.Close(), out.Close())
	}()

	logger.InfoContext(ctx, "resolving", "run_id", eng.RunID(), "input", input, "output", o.output, "mode", eng.Mode().String())

	r := hitio.NewReader(in, inFmt, cfg.ReaderOptions()...)
	if err := eng.ResolveStream(ctx, r.All(), w.Write); err != nil {
		return fmt.Errorf("resolve %s: %w", input, err)
	}
	if rc != nil {
		logger.DebugContext(ctx, "io finished", "bytes", rc.IOBytes(), "memory_in_use", rc.MemoryUsage())
	}
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.Serve(ln) }()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
