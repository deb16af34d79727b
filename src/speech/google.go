package speech

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	tts "google.golang.org/api/texttospeech/v1"
	"google.golang.org/api/option"
)

// voiceCatalog maps the friendly voice names the request envelope historically
// accepted to Google voice families. Names already shaped like Google voice
// identifiers pass through untouched.
var voiceCatalog = map[string]struct {
	language string
	standard string
	neural   string
}{
	"joanna":  {"en-US", "en-US-Standard-C", "en-US-Neural2-F"},
	"matthew": {"en-US", "en-US-Standard-D", "en-US-Neural2-D"},
	"camila":  {"pt-BR", "pt-BR-Standard-A", "pt-BR-Neural2-A"},
	"vitoria": {"pt-BR", "pt-BR-Standard-C", "pt-BR-Neural2-C"},
	"ricardo": {"pt-BR", "pt-BR-Standard-B", "pt-BR-Neural2-B"},
}

// GoogleSynthesizer speaks through the Google Cloud Text-to-Speech REST API
// and spools the returned audio to a local directory.
type GoogleSynthesizer struct {
	Service  *tts.Service
	SpoolDir string
}

// NewGoogleSynthesizer builds a synthesizer. It reads GOOGLE_TTS_API_KEY
// (falling back to GOOGLE_API_KEY) from the env. Audio files land in
// spoolDir, created on demand.
func NewGoogleSynthesizer(ctx context.Context, spoolDir string) (*GoogleSynthesizer, error) {
	apiKey := os.Getenv("GOOGLE_TTS_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("missing GOOGLE_TTS_API_KEY or GOOGLE_API_KEY")
	}

	svc, err := tts.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("texttospeech init: %w", err)
	}
	if spoolDir == "" {
		spoolDir = os.TempDir()
	}
	return &GoogleSynthesizer{Service: svc, SpoolDir: spoolDir}, nil
}

func (g *GoogleSynthesizer) Synthesize(ctx context.Context, req Request) (*Audio, error) {
	req = req.Normalize()
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.New("speech: text is empty")
	}

	language, voiceName := resolveVoice(req.VoiceID, req.UseNeural)
	resp, err := g.Service.Text.Synthesize(&tts.SynthesizeSpeechRequest{
		Input: &tts.SynthesisInput{Text: req.Text},
		Voice: &tts.VoiceSelectionParams{
			LanguageCode: language,
			Name:         voiceName,
		},
		AudioConfig: &tts.AudioConfig{
			AudioEncoding: audioEncoding(req.OutputFormat),
			SpeakingRate:  speakingRate(req.Speed),
		},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("speech: synthesize: %w", err)
	}

	data, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("speech: decode audio: %w", err)
	}

	if err := os.MkdirAll(g.SpoolDir, 0o755); err != nil {
		return nil, fmt.Errorf("speech: spool dir: %w", err)
	}
	path := filepath.Join(g.SpoolDir, fmt.Sprintf("answer-%s.%s", uuid.NewString(), fileExtension(req.OutputFormat)))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("speech: write audio: %w", err)
	}

	return &Audio{
		FilePath: path,
		Format:   req.OutputFormat,
		Voice:    voiceName,
		Size:     len(data),
	}, nil
}

func resolveVoice(voiceID string, neural bool) (language, name string) {
	if entry, ok := voiceCatalog[strings.ToLower(strings.TrimSpace(voiceID))]; ok {
		if neural {
			return entry.language, entry.neural
		}
		return entry.language, entry.standard
	}
	// Google-style voice names encode the language in their prefix.
	if parts := strings.SplitN(voiceID, "-", 3); len(parts) == 3 {
		return parts[0] + "-" + parts[1], voiceID
	}
	return "en-US", "en-US-Standard-C"
}

func audioEncoding(format string) string {
	switch strings.ToLower(format) {
	case "ogg", "ogg_vorbis":
		return "OGG_OPUS"
	case "pcm":
		return "LINEAR16"
	default:
		return "MP3"
	}
}

func fileExtension(format string) string {
	switch strings.ToLower(format) {
	case "ogg", "ogg_vorbis":
		return "ogg"
	case "pcm":
		return "wav"
	default:
		return "mp3"
	}
}

func speakingRate(speed string) float64 {
	switch strings.ToLower(speed) {
	case "slow":
		return 0.85
	case "fast":
		return 1.15
	default:
		return 1.0
	}
}
