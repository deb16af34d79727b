// Package service is the HTTP-facing layer: it owns the request/response
// envelopes, session history loading and the optional speech enrichment
// around the orchestration core.
package service

import (
	"strings"

	assistant "github.com/Protocol-Lattice/go-assistant"
	"github.com/Protocol-Lattice/go-assistant/src/speech"
)

// Response statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// InvokeRequest is the inbound envelope. Query is the only required field.
// VoiceID, OutputFormat, Speed and UseNeural default to Joanna, mp3, medium
// and true.
type InvokeRequest struct {
	Query        string                       `json:"query"`
	SessionID    string                       `json:"session_id,omitempty"`
	History      []assistant.ConversationTurn `json:"history,omitempty"`
	VoiceID      string                       `json:"voice_id,omitempty"`
	OutputFormat string                       `json:"output_format,omitempty"`
	Speed        string                       `json:"speed,omitempty"`
	UseNeural    *bool                        `json:"use_neural,omitempty"`
}

// Valid reports whether the request can be processed at all.
func (r InvokeRequest) Valid() bool {
	return strings.TrimSpace(r.Query) != ""
}

func (r InvokeRequest) speechRequest(text string) speech.Request {
	useNeural := true
	if r.UseNeural != nil {
		useNeural = *r.UseNeural
	}
	return speech.Request{
		Text:         text,
		VoiceID:      r.VoiceID,
		OutputFormat: r.OutputFormat,
		Speed:        r.Speed,
		UseNeural:    useNeural,
	}.Normalize()
}

// ErrorInfo carries the machine-readable failure of an unsuccessful run.
type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// InvokeResponse is the outbound envelope. It is well formed for every
// request: on success UpdatedHistory carries the prior history plus the new
// user and assistant turns, on failure Error is set and the history is
// echoed unchanged.
type InvokeResponse struct {
	Status         string                       `json:"status"`
	SessionID      string                       `json:"session_id,omitempty"`
	FinalAnswer    string                       `json:"final_answer,omitempty"`
	ToolsUsed      []string                     `json:"tools_used,omitempty"`
	UpdatedHistory []assistant.ConversationTurn `json:"updated_history,omitempty"`
	AudioReference *speech.Audio                `json:"audio_reference,omitempty"`
	Error          *ErrorInfo                   `json:"error,omitempty"`
}
