// Package tools ships the built-in tool set of the assistant: text analysis,
// basic math, hashing and public-data lookups (Brazilian CEP addresses and
// country information). Tool names and summaries are Portuguese, matching the
// audience the assistant serves.
package tools

import (
	assistant "github.com/Protocol-Lattice/go-assistant"
)

// RegisterBuiltin registers every built-in tool on the registry.
func RegisterBuiltin(registry *assistant.Registry) error {
	builtin := []assistant.Tool{
		&CharCounter{},
		&TextAnalyzer{},
		&SentimentAnalyzer{},
		&EmailExtractor{},
		&Calculator{},
		&HashGenerator{},
		NewCEPLookup(),
		NewCountryLookup(),
	}
	for _, tool := range builtin {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}
	return nil
}
