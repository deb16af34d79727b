package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	assistant "github.com/Protocol-Lattice/go-assistant"
	"github.com/Protocol-Lattice/go-assistant/src/concurrent"
	"github.com/Protocol-Lattice/go-assistant/src/history"
	"github.com/Protocol-Lattice/go-assistant/src/logger"
	"github.com/Protocol-Lattice/go-assistant/src/speech"
)

const (
	defaultRunTimeout = 60 * time.Second

	// At most this many synthesis calls run at once across all requests;
	// the rest queue on the pool.
	maxConcurrentSynthesis = 4
)

// Options assembles a Service. Orchestrator and Registry are required; Store
// defaults to in-memory, Synthesizer to none.
type Options struct {
	Orchestrator *assistant.Orchestrator
	Registry     *assistant.Registry
	Store        history.Store
	Synthesizer  speech.Synthesizer
	RunTimeout   time.Duration
}

// Service handles invoke requests end to end: load session history, run the
// orchestrator, persist the updated transcript and optionally synthesize the
// answer.
type Service struct {
	orchestrator *assistant.Orchestrator
	registry     *assistant.Registry
	store        history.Store
	synth        speech.Synthesizer
	synthPool    *concurrent.WorkerPool
	timeout      time.Duration
}

func New(opts Options) *Service {
	store := opts.Store
	if store == nil {
		store = history.NewInMemoryStore()
	}
	timeout := opts.RunTimeout
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}
	return &Service{
		orchestrator: opts.Orchestrator,
		registry:     opts.Registry,
		store:        store,
		synth:        opts.Synthesizer,
		synthPool:    concurrent.NewWorkerPool(maxConcurrentSynthesis),
		timeout:      timeout,
	}
}

// Handle processes one invoke request and always returns a well-formed
// response envelope. Speech synthesis failures degrade the response to
// text-only.
func (s *Service) Handle(ctx context.Context, req InvokeRequest) InvokeResponse {
	if !req.Valid() {
		return InvokeResponse{
			Status: StatusError,
			Error:  &ErrorInfo{Kind: assistant.KindBadInput, Message: "query is required"},
		}
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	// An inline history overrides the stored session transcript.
	priorHistory := req.History
	if priorHistory == nil {
		loaded, err := s.store.Load(ctx, sessionID)
		if err != nil {
			logger.Warn("[Service] load history for session %s: %v", sessionID, err)
		} else {
			priorHistory = loaded
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result := s.orchestrator.Run(runCtx, req.Query, priorHistory)
	if result.Status != assistant.StateDone {
		return InvokeResponse{
			Status:         StatusError,
			SessionID:      sessionID,
			ToolsUsed:      result.ToolsUsed,
			UpdatedHistory: priorHistory,
			Error:          &ErrorInfo{Kind: result.Err.Kind, Message: result.Err.Message},
		}
	}

	if err := s.store.Save(ctx, sessionID, result.History); err != nil {
		logger.Warn("[Service] save history for session %s: %v", sessionID, err)
	}

	resp := InvokeResponse{
		Status:         StatusSuccess,
		SessionID:      sessionID,
		FinalAnswer:    result.FinalAnswer,
		ToolsUsed:      result.ToolsUsed,
		UpdatedHistory: result.History,
	}

	if s.synth != nil && result.FinalAnswer != "" {
		var audio *speech.Audio
		err := s.synthPool.Do(ctx, func() error {
			var synthErr error
			audio, synthErr = s.synth.Synthesize(ctx, req.speechRequest(result.FinalAnswer))
			return synthErr
		})
		if err != nil {
			logger.Warn("[Service] speech synthesis failed, answering text-only: %v", err)
		} else {
			resp.AudioReference = audio
		}
	}
	return resp
}

// Tools returns the advertised tool specifications in registration order.
func (s *Service) Tools() []assistant.ToolSpec {
	return s.registry.Specs()
}
