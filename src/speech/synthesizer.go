// Package speech turns final answers into audio. The service layer treats
// synthesis as an optional enrichment: a failed synthesis degrades the
// response to text-only, it never fails the request.
package speech

import (
	"context"
	"strings"
)

// Defaults applied by Normalize when the request leaves a field empty.
const (
	DefaultVoiceID      = "Joanna"
	DefaultOutputFormat = "mp3"
	DefaultSpeed        = "medium"
)

// Request describes one synthesis job.
type Request struct {
	Text         string
	VoiceID      string
	OutputFormat string // mp3, ogg or pcm
	Speed        string // slow, medium or fast
	UseNeural    bool
}

// Normalize fills in the documented defaults.
func (r Request) Normalize() Request {
	if strings.TrimSpace(r.VoiceID) == "" {
		r.VoiceID = DefaultVoiceID
	}
	if strings.TrimSpace(r.OutputFormat) == "" {
		r.OutputFormat = DefaultOutputFormat
	}
	if strings.TrimSpace(r.Speed) == "" {
		r.Speed = DefaultSpeed
	}
	return r
}

// Audio references a synthesized clip spooled to local storage.
type Audio struct {
	FilePath string `json:"file_path"`
	Format   string `json:"format"`
	Voice    string `json:"voice"`
	Size     int    `json:"size_bytes"`
}

// Synthesizer converts text to an audio reference.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (*Audio, error)
}
