package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/evopool/core/metrics"
	"github.com/kilianp07/evopool/infra/logger"
)

const writeTimeout = 5 * time.Second

// InfluxSink writes generation records to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the client resources.
func (s *InfluxSink) Close() { s.client.Close() }

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordEvaluation writes the fitness statistics of a generation.
func (s *InfluxSink) RecordEvaluation(rec coremetrics.EvaluationRecord) error {
	p := write.NewPointWithMeasurement("generation_fitness").
		AddTag("run_id", rec.RunID).
		AddTag("best_species", strconv.Itoa(rec.BestSpecies)).
		AddField("generation", rec.Generation).
		AddField("evaluated", rec.Evaluated).
		AddField("mean", rec.Mean).
		AddField("stdev", rec.Stdev).
		AddField("median", rec.Median).
		AddField("best", rec.Best).
		AddField("best_key", rec.BestKey).
		AddField("complexity", rec.Complexity).
		SetTime(rec.Time)
	return s.write(p)
}

// RecordGeneration writes the population summary of a completed generation.
func (s *InfluxSink) RecordGeneration(rec coremetrics.GenerationRecord) error {
	p := write.NewPointWithMeasurement("generation_summary").
		AddTag("run_id", rec.RunID).
		AddField("generation", rec.Generation).
		AddField("population_size", rec.PopulationSize).
		AddField("species_count", rec.SpeciesCount).
		AddField("duration_s", rec.Duration.Seconds()).
		SetTime(rec.Time)
	return s.write(p)
}

func (s *InfluxSink) RecordExtinction(ev coremetrics.ExtinctionEvent) error {
	p := write.NewPointWithMeasurement("extinction").
		AddTag("run_id", ev.RunID).
		AddField("generation", ev.Generation).
		AddField("total", ev.Total).
		SetTime(ev.Time)
	return s.write(p)
}

func (s *InfluxSink) RecordSolution(ev coremetrics.SolutionEvent) error {
	p := write.NewPointWithMeasurement("solution").
		AddTag("run_id", ev.RunID).
		AddField("generation", ev.Generation).
		AddField("key", ev.Key).
		AddField("fitness", ev.Fitness).
		AddField("complexity", ev.Complexity).
		SetTime(ev.Time)
	return s.write(p)
}

func (s *InfluxSink) RecordStagnation(ev coremetrics.StagnationEvent) error {
	p := write.NewPointWithMeasurement("species_stagnation").
		AddTag("run_id", ev.RunID).
		AddTag("species_id", strconv.Itoa(ev.SpeciesID)).
		AddField("generation", ev.Generation).
		AddField("members", ev.Members).
		SetTime(ev.Time)
	return s.write(p)
}
