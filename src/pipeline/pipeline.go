package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"groundwater-quality-api/src/model"
	"groundwater-quality-api/src/observability"
	"groundwater-quality-api/src/types"
	"groundwater-quality-api/src/utils"
)

// ReadingFetcher returns the newest readings of one postal-code partition.
type ReadingFetcher interface {
	FetchLatest(ctx context.Context, kodePos int64) ([]types.Reading, error)
}

// Status is the outcome of one pipeline run.
type Status int

const (
	StatusSuccess Status = iota
	StatusMissingParameter
	StatusInvalidParameter
	StatusNoRecords
	StatusNoValidRecords
	StatusInternalError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusMissingParameter:
		return "missing_parameter"
	case StatusInvalidParameter:
		return "invalid_parameter"
	case StatusNoRecords:
		return "no_records"
	case StatusNoValidRecords:
		return "no_valid_records"
	default:
		return "internal_error"
	}
}

const (
	MsgSuccess          = "Records retrieved and processed successfully"
	MsgMissingParameter = "Missing required parameter (kode_pos)"
	MsgInvalidParameter = "Invalid parameter (kode_pos must be an integer)"
	MsgInternalError    = "An internal server error occurred while retrieving water quality records"
)

// Result is the terminal state of one pipeline run. Data is set only on success.
type Result struct {
	Status  Status
	Message string
	Data    []types.ClassifiedReading
}

// Pipeline classifies the latest readings of a postal code. The scaler and
// classifier are shared read-only across concurrent runs.
type Pipeline struct {
	fetcher    ReadingFetcher
	scaler     model.Scaler
	classifier model.Classifier
	location   *time.Location
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock
}

func New(fetcher ReadingFetcher, scaler model.Scaler, classifier model.Classifier, location *time.Location, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		fetcher:    fetcher,
		scaler:     scaler,
		classifier: classifier,
		location:   location,
		logger:     logger,
		metrics:    metrics,
		clock:      clock,
	}
}

// Run executes fetch → clean → scale → predict → label for the raw kode_pos query
// value. It never returns an error: failures and panics in any stage come back as
// StatusInternalError with a generic message, and the detail is logged.
func (p *Pipeline) Run(ctx context.Context, rawKodePos string) (res Result) {
	start := p.clock.Now()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pipeline panic", "kode_pos", rawKodePos, "panic", r)
			res = Result{Status: StatusInternalError, Message: MsgInternalError}
		}
		p.metrics.PipelineOutcomes.WithLabelValues(res.Status.String()).Inc()
		p.metrics.PipelineDuration.Observe(p.clock.Since(start).Seconds())
	}()

	rawKodePos = strings.TrimSpace(rawKodePos)
	if rawKodePos == "" {
		p.logger.Warn("missing required parameter", "param", types.AttrKodePos)
		return Result{Status: StatusMissingParameter, Message: MsgMissingParameter}
	}

	kodePos, err := strconv.ParseInt(rawKodePos, 10, 64)
	if err != nil {
		p.logger.Warn("invalid parameter", "param", types.AttrKodePos, "value", rawKodePos)
		return Result{Status: StatusInvalidParameter, Message: MsgInvalidParameter}
	}

	readings, err := p.fetcher.FetchLatest(ctx, kodePos)
	if err != nil {
		return p.internalError(kodePos, "fetch readings", err)
	}
	p.metrics.ReadingsFetched.Add(float64(len(readings)))

	if len(readings) == 0 {
		p.logger.Warn("no records found", "kode_pos", kodePos)
		return Result{Status: StatusNoRecords, Message: fmt.Sprintf("No records found for postal code: %d", kodePos)}
	}

	cleaned, dropped := CleanFeatures(readings)
	p.metrics.ReadingsDropped.Add(float64(dropped))
	if dropped > 0 {
		p.logger.Debug("dropped readings with invalid features", "kode_pos", kodePos, "dropped", dropped, "kept", len(cleaned.Readings))
	}

	if len(cleaned.Readings) == 0 {
		p.logger.Warn("no valid records found", "kode_pos", kodePos, "fetched", len(readings))
		return Result{Status: StatusNoValidRecords, Message: fmt.Sprintf("No valid records found for postal code: %d", kodePos)}
	}

	scaled, err := p.scaler.Transform(cleaned.Matrix)
	if err != nil {
		return p.internalError(kodePos, "scale features", err)
	}

	probabilities, err := p.classifier.Predict(ctx, scaled)
	if err != nil {
		return p.internalError(kodePos, "predict", err)
	}
	if len(probabilities) != len(cleaned.Readings) {
		err := fmt.Errorf("got %d probabilities for %d readings", len(probabilities), len(cleaned.Readings))
		return p.internalError(kodePos, "predict", err)
	}

	labels := utils.ComputeClassifications(probabilities)

	data := make([]types.ClassifiedReading, len(cleaned.Readings))
	for i, r := range cleaned.Readings {
		ts, _ := r.Get(types.AttrTimestamp)
		data[i] = types.ClassifiedReading{
			Reading:        r,
			Classification: labels[i].String(),
			Timestamp:      utils.FormatTimestamp(ts, p.location),
		}
		p.metrics.Predictions.WithLabelValues(labels[i].String()).Inc()
	}

	p.logger.Info("records retrieved and processed", "kode_pos", kodePos, "count", len(data))

	return Result{Status: StatusSuccess, Message: MsgSuccess, Data: data}
}

func (p *Pipeline) internalError(kodePos int64, stage string, err error) Result {
	p.logger.Error("pipeline failed", "kode_pos", kodePos, "stage", stage, "error", err)
	return Result{Status: StatusInternalError, Message: MsgInternalError}
}
