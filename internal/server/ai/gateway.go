package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/lawhelper/internal/common"
	"github.com/dmitrijs2005/lawhelper/internal/logging"
)

var (
	ErrTimeout  = errors.New("ai request timed out")
	ErrUpstream = errors.New("ai provider failed")
	ErrSchema   = errors.New("ai reply does not match the expected schema")
)

const DefaultTimeout = 45 * time.Second

// Gateway runs the AI features. It has no side effects besides the
// provider call; callers record history.
type Gateway struct {
	provider Provider
	timeout  time.Duration
	logger   logging.Logger
}

func NewGateway(p Provider, timeout time.Duration, logger logging.Logger) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{provider: p, timeout: timeout, logger: logger.With("component", "ai", "provider", p.Name())}
}

// Model names the model that produces replies, for document provenance.
func (g *Gateway) Model() string {
	return g.provider.Model()
}

type reply[T any] interface {
	*T
	Validate() error
}

func invoke[T any, PT reply[T]](ctx context.Context, g *Gateway, op Operation, subject, prompt string) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	text, err := g.provider.Complete(ctx, Request{Operation: op, System: systemPrompt, Prompt: prompt, Subject: subject})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			g.logger.Warn(ctx, "ai call timed out", "operation", op, "timeout", g.timeout)
			return nil, fmt.Errorf("%w: %s after %s", ErrTimeout, op, g.timeout)
		}
		g.logger.Error(ctx, "ai call failed", "operation", op, "error", err)
		return nil, fmt.Errorf("%w: %s: %v", ErrUpstream, op, err)
	}

	out := PT(new(T))
	if err := json.Unmarshal([]byte(stripFences(text)), out); err != nil {
		g.logger.Error(ctx, "ai reply is not valid json", "operation", op, "error", err)
		return nil, fmt.Errorf("%w: %s: %v", ErrSchema, op, err)
	}
	if err := out.Validate(); err != nil {
		g.logger.Error(ctx, "ai reply rejected", "operation", op, "error", err)
		return nil, fmt.Errorf("%w: %s: %v", ErrSchema, op, err)
	}

	g.logger.Debug(ctx, "ai call done", "operation", op, "duration", time.Since(start))
	return out, nil
}

// stripFences removes a markdown code fence some models add around JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func (g *Gateway) LegalSearch(ctx context.Context, in LegalSearchInput) (*LegalSearchResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return invoke[LegalSearchResult](ctx, g, OpLegalSearch, in.Query, legalSearchPrompt(in))
}

func (g *Gateway) SummarizeDocument(ctx context.Context, in SummarizeInput) (*DocumentSummary, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, common.NewFieldError("file", "contains no text")
	}
	return invoke[DocumentSummary](ctx, g, OpSummarize, in.SummaryType, summarizePrompt(in))
}

func (g *Gateway) AnalyzeRisk(ctx context.Context, in RiskInput) (*RiskAnalysis, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return invoke[RiskAnalysis](ctx, g, OpRiskAnalysis, in.CaseType, riskPrompt(in))
}

func (g *Gateway) LawAgent(ctx context.Context, in QuestionInput) (*AgentAnswer, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return invoke[AgentAnswer](ctx, g, OpLawAgent, in.Question, lawAgentPrompt(in))
}

func (g *Gateway) WebSearch(ctx context.Context, in WebSearchInput) (*WebSearchResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return invoke[WebSearchResult](ctx, g, OpWebSearch, in.Query, webSearchPrompt(in))
}

func (g *Gateway) QuickQuestion(ctx context.Context, in QuestionInput) (*QuickAnswer, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return invoke[QuickAnswer](ctx, g, OpQuickQuestion, in.Question, quickQuestionPrompt(in))
}

func (g *Gateway) GenerateDocument(ctx context.Context, in GenerateInput) (*GeneratedDocument, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return invoke[GeneratedDocument](ctx, g, OpGenerateDocument, in.DocumentType, generatePrompt(in))
}

func (g *Gateway) AnalyzeDocument(ctx context.Context, in AnalyzeInput) (*DocumentAnalysis, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, common.NewFieldError("file", "contains no text")
	}
	return invoke[DocumentAnalysis](ctx, g, OpAnalyzeDocument, in.FileName, analyzePrompt(in))
}

func (g *Gateway) ImproveSection(ctx context.Context, in ImproveInput) (*ImprovedSection, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return invoke[ImprovedSection](ctx, g, OpImproveSection, in.Item, improvePrompt(in))
}
