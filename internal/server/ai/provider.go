// Package ai is the gateway to the external language model. Every feature
// has its own prompt, a typed reply schema and validation on receipt.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/lawhelper/internal/server/config"
)

// Operation names one AI feature. The value doubles as the history type tag.
type Operation string

const (
	OpLegalSearch      Operation = "legal-search"
	OpSummarize        Operation = "document-summary"
	OpRiskAnalysis     Operation = "risk-analysis"
	OpLawAgent         Operation = "law-agent"
	OpWebSearch        Operation = "web-search"
	OpQuickQuestion    Operation = "quick-question"
	OpGenerateDocument Operation = "document-generation"
	OpAnalyzeDocument  Operation = "document-analysis"
	OpImproveSection   Operation = "section-improvement"
)

// Request is one completion call. Subject carries the main user input so
// that offline providers can echo it back.
type Request struct {
	Operation Operation
	System    string
	Prompt    string
	Subject   string
}

// Provider returns the raw JSON text produced by a model.
type Provider interface {
	Name() string
	Model() string
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrNoProvider means no provider was named and no API key was found.
var ErrNoProvider = errors.New("no ai provider configured: set OPENAI_API_KEY or GEMINI_API_KEY, or AI_PROVIDER=mock")

// NewProvider selects the provider named by cfg.AIProvider. When none is
// named, the first API key present decides; the mock is only picked
// implicitly in debug mode.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.AIProvider))
	if name == "" {
		name = detectProvider(cfg)
	}

	switch name {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("ai provider openai: OPENAI_API_KEY is not set")
		}
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.AIModel, nil), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("ai provider gemini: GEMINI_API_KEY is not set")
		}
		return NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.AIModel)
	case "mock":
		return NewMockProvider(), nil
	case "":
		return nil, ErrNoProvider
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AIProvider)
	}
}

func detectProvider(cfg *config.Config) string {
	switch {
	case cfg.OpenAIAPIKey != "":
		return "openai"
	case cfg.GeminiAPIKey != "":
		return "gemini"
	case cfg.Debug:
		return "mock"
	default:
		return ""
	}
}
