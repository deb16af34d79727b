package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gotoon "github.com/alpkeskin/gotoon"

	"github.com/Protocol-Lattice/go-assistant/src/models"
)

// State labels the phases of one Run. Exposed for observability; callers only
// need the terminal pair.
type State string

const (
	StateAwaitingModel    State = "AWAITING_MODEL"
	StateDispatchingTools State = "DISPATCHING_TOOLS"
	StateDone             State = "DONE"
	StateFailed           State = "FAILED"
)

const defaultSystemPrompt = `You are a helpful conversational assistant with access to tools for text
analysis, calculation, hashing and public data lookups. Call a tool whenever
it gives a more reliable answer than guessing; answer directly when no tool
applies. After receiving tool results, compose a concise final answer for the
user. Always answer in the language the user wrote in.`

const defaultMaxSteps = 5

// Options configures an Orchestrator. Model and Registry are required.
type Options struct {
	Model        models.Agent
	Registry     *Registry
	SystemPrompt string
	// MaxSteps caps model round-trips per run. A run that still wants tools
	// after the cap fails with a step-limit error.
	MaxSteps       int
	MaxTokens      int
	MaxConcurrency int
}

// Orchestrator drives the model/tool conversation loop for one query at a
// time. It holds no per-run state, so a single instance serves concurrent
// runs.
type Orchestrator struct {
	model        models.Agent
	registry     *Registry
	dispatcher   *Dispatcher
	systemPrompt string
	maxSteps     int
	maxTokens    int
}

// New builds an orchestrator from opts.
func New(opts Options) (*Orchestrator, error) {
	if opts.Model == nil {
		return nil, fmt.Errorf("orchestrator: model is required")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("orchestrator: registry is required")
	}
	prompt := strings.TrimSpace(opts.SystemPrompt)
	if prompt == "" {
		prompt = defaultSystemPrompt
	}
	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}
	return &Orchestrator{
		model:        opts.Model,
		registry:     opts.Registry,
		dispatcher:   NewDispatcher(opts.Registry, opts.MaxConcurrency),
		systemPrompt: prompt,
		maxSteps:     maxSteps,
		maxTokens:    opts.MaxTokens,
	}, nil
}

// RunResult is the outcome of one query. On DONE, History is the caller's
// history plus exactly the new user and assistant turns. On FAILED, History
// echoes the caller's history unchanged and Err describes the fault.
type RunResult struct {
	Status      State
	FinalAnswer string
	ToolsUsed   []string
	History     []ConversationTurn
	Err         *RunError
}

// Run answers one user query, looping between the model and the tool
// dispatcher until the model produces a final answer or a terminal fault
// occurs. Tool-level faults are fed back to the model as error results and
// never terminate the run.
func (o *Orchestrator) Run(ctx context.Context, query string, history []ConversationTurn) RunResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return failed(history, nil, newRunError(KindBadInput, errors.New("query is empty")))
	}

	transcript := transcriptFromHistory(history)
	transcript = append(transcript, models.Message{Role: models.RoleUser, Content: query})
	specs := modelSpecs(o.registry.Specs())

	var toolsUsed []string

	for step := 1; step <= o.maxSteps; step++ {
		completion, err := o.model.Invoke(ctx, models.Request{
			System:    o.systemPrompt,
			Messages:  transcript,
			Tools:     specs,
			MaxTokens: o.maxTokens,
		})
		if err != nil {
			return failed(history, toolsUsed, classify(ctx, err))
		}

		if len(completion.ToolCalls) == 0 {
			updated := make([]ConversationTurn, 0, len(history)+2)
			updated = append(updated, history...)
			updated = append(updated, NewUserTurn(query), NewAssistantTurn(completion.Text))
			return RunResult{
				Status:      StateDone,
				FinalAnswer: completion.Text,
				ToolsUsed:   toolsUsed,
				History:     updated,
			}
		}

		reqs := make([]ToolCallRequest, len(completion.ToolCalls))
		for i, tc := range completion.ToolCalls {
			reqs[i] = ToolCallRequest{Name: tc.Name, Arguments: tc.Arguments}
			toolsUsed = append(toolsUsed, tc.Name)
		}
		results := o.dispatcher.DispatchAll(ctx, reqs)
		if err := ctx.Err(); err != nil {
			return failed(history, toolsUsed, classify(ctx, err))
		}

		transcript = append(transcript, models.Message{
			Role:      models.RoleAssistant,
			Content:   completion.Text,
			ToolCalls: completion.ToolCalls,
		})
		for i, result := range results {
			transcript = append(transcript, models.Message{
				Role:       models.RoleTool,
				Content:    renderResult(result),
				ToolCallID: completion.ToolCalls[i].ID,
				ToolName:   completion.ToolCalls[i].Name,
			})
		}
	}

	err := fmt.Errorf("%w: no final answer after %d steps", ErrStepLimitExceeded, o.maxSteps)
	return failed(history, toolsUsed, newRunError(KindStepLimit, err))
}

func failed(history []ConversationTurn, toolsUsed []string, err *RunError) RunResult {
	return RunResult{
		Status:    StateFailed,
		ToolsUsed: toolsUsed,
		History:   history,
		Err:       err,
	}
}

// classify separates caller-imposed deadlines from endpoint faults.
func classify(ctx context.Context, err error) *RunError {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return newRunError(KindTimeout, err)
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return newRunError(KindCanceled, err)
	default:
		return newRunError(KindEndpoint, err)
	}
}

// renderResult encodes a tool result as compact TOON text for the model.
func renderResult(result ToolResult) string {
	if text, err := gotoon.Encode(result); err == nil {
		return text
	}
	if result.OK() {
		return fmt.Sprintf("status: %s\nsummary: %s", result.Status, result.Summary)
	}
	return fmt.Sprintf("status: %s\nerror: %s", result.Status, result.ErrorDetail)
}

func transcriptFromHistory(history []ConversationTurn) []models.Message {
	msgs := make([]models.Message, 0, len(history)+1)
	for _, turn := range history {
		msgs = append(msgs, models.Message{Role: turn.Role, Content: turn.Content})
	}
	return msgs
}

func modelSpecs(specs []ToolSpec) []models.ToolSpec {
	out := make([]models.ToolSpec, len(specs))
	for i, spec := range specs {
		out[i] = models.ToolSpec{
			Name:        spec.Name,
			Description: spec.Description,
			InputSchema: spec.InputSchema(),
		}
	}
	return out
}
