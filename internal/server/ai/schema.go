package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/lawhelper/internal/common"
	"github.com/dmitrijs2005/lawhelper/internal/server/models"
)

// Severity is the closed high/medium/low scale used for risks, issues and
// weak-point priorities.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

func (s *Severity) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = Severity(strings.ToLower(strings.TrimSpace(v)))
	return nil
}

func (s Severity) valid() bool {
	return s == SeverityHigh || s == SeverityMedium || s == SeverityLow
}

// Amount is a money figure kept as text. Models sometimes answer with a
// bare number, which is accepted and rendered as written.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = Amount(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount must be a string or number")
	}
	*a = Amount(n.String())
	return nil
}

func percent(field string, v int) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("%s must be within 0..100, got %d", field, v)
	}
	return nil
}

func required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s is empty", field)
	}
	return nil
}

// ---- inputs ----

type LegalSearchInput struct {
	Query   string         `json:"query"`
	Filters map[string]any `json:"filters,omitempty"`
}

func (in LegalSearchInput) Validate() error {
	if strings.TrimSpace(in.Query) == "" {
		return common.NewFieldError("query", "is required")
	}
	return nil
}

type SummarizeInput struct {
	Text        string
	SummaryType string
}

type RiskInput struct {
	CaseType     string `json:"caseType"`
	Description  string `json:"description"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
	CaseValue    string `json:"caseValue,omitempty"`
}

func (in RiskInput) Validate() error {
	if strings.TrimSpace(in.CaseType) == "" {
		return common.NewFieldError("caseType", "is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return common.NewFieldError("description", "is required")
	}
	return nil
}

type QuestionInput struct {
	Question string `json:"question"`
}

func (in QuestionInput) Validate() error {
	if strings.TrimSpace(in.Question) == "" {
		return common.NewFieldError("question", "is required")
	}
	return nil
}

type WebSearchInput struct {
	Query string `json:"query"`
}

func (in WebSearchInput) Validate() error {
	if strings.TrimSpace(in.Query) == "" {
		return common.NewFieldError("query", "is required")
	}
	return nil
}

const (
	InputMethodText = "text"
	InputMethodForm = "form"
)

type GenerateInput struct {
	DocumentType string         `json:"documentType"`
	InputMethod  string         `json:"inputMethod"`
	TextContent  string         `json:"textContent,omitempty"`
	FormData     map[string]any `json:"formData,omitempty"`
}

func (in GenerateInput) Validate() error {
	if _, err := models.ParseDocumentType(in.DocumentType); err != nil {
		return err
	}
	switch in.InputMethod {
	case InputMethodText:
		if strings.TrimSpace(in.TextContent) == "" {
			return common.NewFieldError("textContent", "is required for text input")
		}
	case InputMethodForm:
		if len(in.FormData) == 0 {
			return common.NewFieldError("formData", "is required for form input")
		}
	case "":
		return common.NewFieldError("inputMethod", "is required")
	default:
		return common.NewFieldError("inputMethod", fmt.Sprintf("unknown value %q", in.InputMethod))
	}
	return nil
}

type AnalyzeInput struct {
	Text     string
	FileName string
}

type ImproveInput struct {
	Type            string `json:"type"`
	Item            string `json:"item"`
	DocumentContent string `json:"documentContent"`
}

func (in ImproveInput) Validate() error {
	if strings.TrimSpace(in.Type) == "" {
		return common.NewFieldError("type", "is required")
	}
	if strings.TrimSpace(in.Item) == "" {
		return common.NewFieldError("item", "is required")
	}
	return nil
}

// ---- replies ----

type CaseReference struct {
	Name      string `json:"name"`
	Citation  string `json:"citation"`
	Court     string `json:"court,omitempty"`
	Year      string `json:"year,omitempty"`
	Relevance string `json:"relevance"`
}

type StatuteReference struct {
	Title       string `json:"title"`
	Citation    string `json:"citation"`
	Description string `json:"description"`
}

type LegalSearchResult struct {
	Summary   string             `json:"summary"`
	Cases     []CaseReference    `json:"cases"`
	Statutes  []StatuteReference `json:"statutes"`
	KeyPoints []string           `json:"keyPoints"`
}

func (r *LegalSearchResult) Validate() error {
	if err := required("summary", r.Summary); err != nil {
		return err
	}
	for i, c := range r.Cases {
		if err := required(fmt.Sprintf("cases[%d].name", i), c.Name); err != nil {
			return err
		}
	}
	return nil
}

type DocumentSummary struct {
	Summary         string   `json:"summary"`
	KeyPoints       []string `json:"keyPoints"`
	Parties         []string `json:"parties"`
	ImportantDates  []string `json:"importantDates"`
	LegalIssues     []string `json:"legalIssues"`
	Recommendations []string `json:"recommendations"`
}

func (r *DocumentSummary) Validate() error {
	return required("summary", r.Summary)
}

type RiskFactor struct {
	Factor      string   `json:"factor"`
	Severity    Severity `json:"severity"`
	Explanation string   `json:"explanation"`
}

type SettlementRange struct {
	Low         Amount `json:"low"`
	High        Amount `json:"high"`
	Recommended Amount `json:"recommended"`
}

type RiskAnalysis struct {
	SuccessProbability int             `json:"successProbability"`
	ConfidenceLevel    int             `json:"confidenceLevel"`
	RiskFactors        []RiskFactor    `json:"riskFactors"`
	Strengths          []string        `json:"strengths"`
	Weaknesses         []string        `json:"weaknesses"`
	SettlementRange    SettlementRange `json:"settlementRange"`
	Recommendations    []string        `json:"recommendations"`
	Timeline           string          `json:"timeline"`
}

func (r *RiskAnalysis) Validate() error {
	if err := percent("successProbability", r.SuccessProbability); err != nil {
		return err
	}
	if err := percent("confidenceLevel", r.ConfidenceLevel); err != nil {
		return err
	}
	for i, f := range r.RiskFactors {
		if err := required(fmt.Sprintf("riskFactors[%d].factor", i), f.Factor); err != nil {
			return err
		}
		if !f.Severity.valid() {
			return fmt.Errorf("riskFactors[%d].severity %q is not high, medium or low", i, f.Severity)
		}
		if err := required(fmt.Sprintf("riskFactors[%d].explanation", i), f.Explanation); err != nil {
			return err
		}
	}
	return errors.Join(
		required("settlementRange.low", string(r.SettlementRange.Low)),
		required("settlementRange.high", string(r.SettlementRange.High)),
		required("settlementRange.recommended", string(r.SettlementRange.Recommended)),
	)
}

type AgentAnswer struct {
	Answer            string   `json:"answer"`
	LegalBasis        []string `json:"legalBasis"`
	Confidence        int      `json:"confidence"`
	FollowUpQuestions []string `json:"followUpQuestions"`
	Disclaimer        string   `json:"disclaimer"`
}

func (r *AgentAnswer) Validate() error {
	if err := required("answer", r.Answer); err != nil {
		return err
	}
	return percent("confidence", r.Confidence)
}

type WebResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

type WebSearchResult struct {
	Results []WebResult `json:"results"`
	Summary string      `json:"summary"`
}

func (r *WebSearchResult) Validate() error {
	for i, res := range r.Results {
		if err := required(fmt.Sprintf("results[%d].title", i), res.Title); err != nil {
			return err
		}
	}
	return required("summary", r.Summary)
}

type QuickAnswer struct {
	Answer string `json:"answer"`
}

func (r *QuickAnswer) Validate() error {
	return required("answer", r.Answer)
}

type GeneratedSection struct {
	Heading string   `json:"heading"`
	Content string   `json:"content"`
	Items   []string `json:"items,omitempty"`
}

type GeneratedDocument struct {
	Title    string             `json:"title"`
	Sections []GeneratedSection `json:"sections"`
	Summary  string             `json:"summary"`
	Warnings []string           `json:"warnings"`
}

func (r *GeneratedDocument) Validate() error {
	if err := required("title", r.Title); err != nil {
		return err
	}
	if len(r.Sections) == 0 {
		return fmt.Errorf("sections is empty")
	}
	return nil
}

// Text flattens the generated document into the stored content.
func (r *GeneratedDocument) Text() string {
	var b strings.Builder
	b.WriteString(r.Title)
	for _, s := range r.Sections {
		b.WriteString("\n\n")
		if s.Heading != "" {
			b.WriteString(s.Heading)
			b.WriteString("\n")
		}
		b.WriteString(s.Content)
		for _, it := range s.Items {
			b.WriteString("\n- ")
			b.WriteString(it)
		}
	}
	return strings.TrimSpace(b.String())
}

type Issue struct {
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	Item        string   `json:"item"`
	Explanation string   `json:"explanation"`
	Suggestion  string   `json:"suggestion"`
}

type WeakPoint struct {
	Item        string   `json:"item"`
	Explanation string   `json:"explanation"`
	Priority    Severity `json:"priority"`
}

type DocumentAnalysis struct {
	Summary        string      `json:"summary"`
	DocumentType   string      `json:"documentType"`
	OverallScore   int         `json:"overallScore"`
	Issues         []Issue     `json:"issues"`
	WeakPoints     []WeakPoint `json:"weakPoints"`
	MissingClauses []string    `json:"missingClauses"`
	Strengths      []string    `json:"strengths"`
}

func (r *DocumentAnalysis) Validate() error {
	if err := required("summary", r.Summary); err != nil {
		return err
	}
	if err := percent("overallScore", r.OverallScore); err != nil {
		return err
	}
	for i, is := range r.Issues {
		if !is.Severity.valid() {
			return fmt.Errorf("issues[%d].severity %q is not high, medium or low", i, is.Severity)
		}
		if err := required(fmt.Sprintf("issues[%d].explanation", i), is.Explanation); err != nil {
			return err
		}
	}
	for i, w := range r.WeakPoints {
		if !w.Priority.valid() {
			return fmt.Errorf("weakPoints[%d].priority %q is not high, medium or low", i, w.Priority)
		}
		if err := required(fmt.Sprintf("weakPoints[%d].explanation", i), w.Explanation); err != nil {
			return err
		}
	}
	return nil
}

type ImprovedSection struct {
	ImprovedText string `json:"improvedText"`
	Explanation  string `json:"explanation"`
}

func (r *ImprovedSection) Validate() error {
	return errors.Join(required("improvedText", r.ImprovedText), required("explanation", r.Explanation))
}
