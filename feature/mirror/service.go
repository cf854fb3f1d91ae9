package mirror

import (
	"context"
	"errors"
	"sync"
	"time"

	corelogger "calendar-sync/core/logger"
	"calendar-sync/core/metrics"
	"calendar-sync/core/reconcile"
	"calendar-sync/core/report"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrPassRunning is returned when a pass is triggered while another one runs.
var ErrPassRunning = errors.New("a sync pass is already running")

// Trigger names what started a pass.
const (
	TriggerSchedule = "schedule"
	TriggerHTTP     = "http"
	TriggerCLI      = "cli"
)

// Engine is the part of the orchestrator the service drives.
type Engine interface {
	RunPass(ctx context.Context) (*reconcile.PassSummary, error)
	Plan(ctx context.Context) (*reconcile.PassPlan, error)
}

// Result is the outcome of one pass as reported to callers.
type Result struct {
	PassID    string                 `json:"pass_id"`
	Trigger   string                 `json:"trigger"`
	StartedAt time.Time              `json:"started_at"`
	Summary   *reconcile.PassSummary `json:"summary,omitempty"`
	Error     string                 `json:"error,omitempty"`
	ReportKey string                 `json:"report_key,omitempty"`
}

// Service serializes passes and keeps their results.
type Service struct {
	engine   Engine
	archive  *report.Archive
	recorder *metrics.Recorder
	logger   *zap.Logger

	running sync.Mutex

	mu   sync.RWMutex
	last *Result
}

// NewService creates a service. archive and recorder may be nil.
func NewService(engine Engine, archive *report.Archive, recorder *metrics.Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{engine: engine, archive: archive, recorder: recorder, logger: logger}
}

// Run executes one pass and waits for it.
func (s *Service) Run(ctx context.Context, trigger string) (*Result, error) {
	if !s.running.TryLock() {
		return nil, ErrPassRunning
	}
	defer s.running.Unlock()
	return s.run(ctx, uuid.NewString(), trigger), nil
}

// Start launches a pass in the background and returns its id. The pass runs on its
// own context so it outlives the caller.
func (s *Service) Start(trigger string) (string, error) {
	if !s.running.TryLock() {
		return "", ErrPassRunning
	}
	passID := uuid.NewString()
	go func() {
		defer s.running.Unlock()
		s.run(context.Background(), passID, trigger)
	}()
	return passID, nil
}

func (s *Service) run(ctx context.Context, passID, trigger string) *Result {
	log := corelogger.ForPass(s.logger, passID, trigger)
	log.Info("Sync pass started")

	if s.recorder != nil {
		s.recorder.PassRunning.Set(1)
		defer s.recorder.PassRunning.Set(0)
	}

	result := &Result{PassID: passID, Trigger: trigger, StartedAt: time.Now().UTC()}
	summary, err := s.engine.RunPass(ctx)
	result.Summary = summary
	if err != nil {
		result.Error = err.Error()
		log.Error("Sync pass failed", zap.Error(err))
	}

	if s.recorder != nil {
		s.recorder.ObservePass(summary, err)
	}

	if s.archive != nil {
		key, aerr := s.archive.Save(ctx, report.Report{
			PassID:  passID,
			Trigger: trigger,
			Summary: summary,
			Error:   result.Error,
		})
		if aerr != nil {
			log.Warn("Failed to archive report", zap.Error(aerr))
		} else {
			result.ReportKey = key
		}
	}

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()

	return result
}

// Last returns the most recent result, or nil before the first pass.
func (s *Service) Last() *Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Running reports whether a pass is in progress.
func (s *Service) Running() bool {
	if s.running.TryLock() {
		s.running.Unlock()
		return false
	}
	return true
}

// Plan computes what a pass would do without writing anything.
func (s *Service) Plan(ctx context.Context) (*reconcile.PassPlan, error) {
	return s.engine.Plan(ctx)
}

// Archive returns the report archive, or nil when archiving is off.
func (s *Service) Archive() *report.Archive {
	return s.archive
}
