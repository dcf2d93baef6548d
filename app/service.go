package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/kilianp07/evopool/config"
	"github.com/kilianp07/evopool/core/evaluator"
	"github.com/kilianp07/evopool/core/events"
	"github.com/kilianp07/evopool/core/fitnesslog"
	coremetrics "github.com/kilianp07/evopool/core/metrics"
	"github.com/kilianp07/evopool/core/model"
	coremon "github.com/kilianp07/evopool/core/monitoring"
	corenotify "github.com/kilianp07/evopool/core/notify"
	"github.com/kilianp07/evopool/core/reporting"
	_ "github.com/kilianp07/evopool/infra/fitnesslog"
	"github.com/kilianp07/evopool/infra/logger"
	"github.com/kilianp07/evopool/infra/metrics"
	"github.com/kilianp07/evopool/infra/monitoring"
	"github.com/kilianp07/evopool/infra/mqtt"
	"github.com/kilianp07/evopool/infra/notify"
	"github.com/kilianp07/evopool/infra/plot"
	"github.com/kilianp07/evopool/internal/eventbus"
)

// Service runs the generation loop: evaluate in parallel, report, breed.
type Service struct {
	cfg       *config.Config
	run       model.RunConfig
	log       logger.Logger
	evaluator *evaluator.ParallelEvaluator
	reporters *reporting.ReporterSet
	stats     *reporting.StdOutReporter
	breeder   *Breeder
	bus       *eventbus.TypedBus[events.Event]
	fitness   fitnesslog.Writer
	sink      corenotify.Sink
	metrics   coremetrics.MetricsSink

	cancel    context.CancelFunc
	collected <-chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Option customizes a Service.
type Option func(*options)

type options struct {
	out    io.Writer
	evalFn evaluator.EvalFunc
}

// WithOutput redirects the report lines. Defaults to stdout.
func WithOutput(w io.Writer) Option { return func(o *options) { o.out = w } }

// WithEvalFunc replaces the Sphere fitness function.
func WithEvalFunc(fn evaluator.EvalFunc) Option { return func(o *options) { o.evalFn = fn } }

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (svc *Service, err error) {
	o := options{out: os.Stdout, evalFn: Sphere}
	for _, opt := range opts {
		opt(&o)
	}
	run := cfg.Run.Model()
	s := &Service{cfg: cfg, run: run, log: logger.New("service"), breeder: NewBreeder(run)}
	defer func() {
		if err != nil {
			_ = s.Close(context.Background())
		}
	}()

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	if s.fitness, err = fitnesslog.NewWriter(cfg.Logging.Backends); err != nil {
		return nil, fmt.Errorf("fitness log: %w", err)
	}
	if s.sink, err = buildSink(cfg, run.RunID); err != nil {
		return nil, err
	}
	plotter, err := plot.NewEChartsPlotter(cfg.Reporting.PlotDir)
	if err != nil {
		return nil, err
	}
	if s.metrics, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks); err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	s.bus = eventbus.NewTyped[events.Event](eventbus.WithBuffer(cfg.Reporting.EventBuffer))
	var ctx context.Context
	ctx, s.cancel = context.WithCancel(context.Background())
	s.collected = metrics.StartEventCollector(ctx, s.bus, s.metrics, logger.New("metrics_collector"))

	s.stats = reporting.NewStdOutReporter(cfg.Reporting.ShowSpeciesDetail,
		reporting.WithOutput(o.out),
		reporting.WithLogger(logger.New("reporter")),
		reporting.WithFitnessLog(s.fitness),
		reporting.WithSink(s.sink),
		reporting.WithPlotter(plotter),
		reporting.WithReportTimeout(cfg.Reporting.ReportTimeout()),
	)
	s.reporters = reporting.NewReporterSet(s.stats, reporting.NewEventReporter(s.bus, run.RunID))

	s.evaluator, err = evaluator.New(
		cfg.Evaluator.EvaluatorOptions(),
		o.evalFn,
		cfg.Evaluator.ClientList(),
		evaluator.Settings(cfg.Evaluator.Settings),
		logger.New("evaluator"),
	)
	if err != nil {
		return nil, fmt.Errorf("evaluator: %w", err)
	}
	return s, nil
}

func buildSink(cfg *config.Config, runID string) (corenotify.Sink, error) {
	sink, err := notify.Build(cfg.Reporting.Sinks)
	if err != nil {
		return nil, fmt.Errorf("report sinks: %w", err)
	}
	if cfg.MQTT.Broker == "" {
		return sink, nil
	}
	pub, err := mqtt.NewPublisher(cfg.MQTT)
	if err != nil {
		return nil, fmt.Errorf("mqtt: %w", err)
	}
	return notify.NewMultiSink(sink, notify.NewMQTTSink(pub, runID)), nil
}

// Reporters exposes the observer set so callers can attach their own.
func (s *Service) Reporters() *reporting.ReporterSet { return s.reporters }

// Extinctions returns the number of complete extinctions of the last run.
func (s *Service) Extinctions() int { return s.stats.Extinctions() }

// Run executes the configured number of generations, or fewer when a genome
// meets the fitness threshold. It returns a copy of the best genome seen.
func (s *Service) Run(ctx context.Context) (*model.Genome, error) {
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		srvCtx, stop := context.WithCancel(ctx)
		defer stop()
		go func() {
			if err := metrics.StartPromServer(srvCtx, addr, nil); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	cfg := s.run
	if err := s.reporters.Info(fmt.Sprintf("Run %s: %d genomes on %d evaluation clients", cfg.RunID, cfg.PopulationSize, s.evaluator.Clients())); err != nil {
		return nil, err
	}

	pop := s.breeder.Initial()
	species := s.breeder.Speciate(pop, nil, 0)
	var best *model.Genome
	for gen := 0; gen < cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return best, err
		}
		if err := s.reporters.StartGeneration(gen, cfg, pop, species); err != nil {
			return best, err
		}
		if err := s.evaluator.Evaluate(ctx, pop, cfg); err != nil {
			return best, fmt.Errorf("generation %d: %w", gen, err)
		}
		genBest, _ := pop.Best()
		if best == nil || genBest.Fitness > best.Fitness {
			best = &model.Genome{Key: genBest.Key, Fitness: genBest.Fitness, Evaluated: true, Genes: slices.Clone(genBest.Genes)}
		}
		if err := s.reporters.PostEvaluate(cfg, pop, species, genBest); err != nil {
			return best, err
		}
		if genBest.Fitness >= cfg.FitnessThreshold {
			if err := s.reporters.FoundSolution(cfg, gen, genBest); err != nil {
				return best, err
			}
			break
		}

		next, err := s.breeder.Reproduce(gen, pop, species, s.reporters.SpeciesStagnant)
		if err != nil {
			return best, err
		}
		if len(next) == 0 {
			if err := s.reporters.CompleteExtinction(); err != nil {
				return best, err
			}
			next = s.breeder.Initial()
		}
		pop = next
		if err := s.reporters.PostReproduction(cfg, pop, species); err != nil {
			return best, err
		}
		species = s.breeder.Speciate(pop, species, gen)
		if err := s.reporters.EndGeneration(cfg, pop, species); err != nil {
			return best, err
		}
	}
	return best, nil
}

// Close stops the evaluator, drains the metrics collector and releases the
// log and sink resources.
func (s *Service) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.evaluator != nil {
			errs = append(errs, s.evaluator.Close(ctx))
		}
		if s.bus != nil {
			s.bus.Close()
			select {
			case <-s.collected:
			case <-ctx.Done():
				errs = append(errs, fmt.Errorf("metrics collector: %w", ctx.Err()))
			}
		}
		if s.cancel != nil {
			s.cancel()
		}
		if s.fitness != nil {
			errs = append(errs, s.fitness.Close())
		}
		if c, ok := s.sink.(interface{ Close() error }); ok {
			errs = append(errs, c.Close())
		}
		if c, ok := s.metrics.(interface{ Close() }); ok {
			c.Close()
		}
		coremon.Flush(2 * time.Second)
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}
