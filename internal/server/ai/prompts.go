package ai

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const systemPrompt = `You are LawHelper, an assistant for legal professionals. ` +
	`Answer only with a single JSON object that matches the shape you are given. ` +
	`Do not wrap it in markdown. Percentages are integers from 0 to 100. ` +
	`Severity and priority values are exactly "high", "medium" or "low". ` +
	`You provide legal information, not legal advice.`

// maxPromptText bounds the document text embedded in a prompt.
const maxPromptText = 30000

func clip(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxPromptText {
		return s
	}
	cut := maxPromptText
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "\n[truncated]"
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

// fields renders a free-form map as sorted "key: value" lines.
func fields(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v := m[k]
		switch v := v.(type) {
		case string:
			fmt.Fprintf(&b, "- %s: %s\n", k, v)
		default:
			raw, _ := json.Marshal(v)
			fmt.Fprintf(&b, "- %s: %s\n", k, raw)
		}
	}
	return b.String()
}

func legalSearchPrompt(in LegalSearchInput) string {
	filters := "none"
	if len(in.Filters) > 0 {
		filters = "\n" + fields(in.Filters)
	}
	return fmt.Sprintf(`Research the following legal question.

Query: %s
Filters: %s

Respond with JSON:
{"summary": string, "cases": [{"name": string, "citation": string, "court": string, "year": string, "relevance": string}], "statutes": [{"title": string, "citation": string, "description": string}], "keyPoints": [string]}`,
		strings.TrimSpace(in.Query), filters)
}

func summarizePrompt(in SummarizeInput) string {
	return fmt.Sprintf(`Summarize the legal document below. Summary style: %s.

Document:
"""
%s
"""

Respond with JSON:
{"summary": string, "keyPoints": [string], "parties": [string], "importantDates": [string], "legalIssues": [string], "recommendations": [string]}`,
		orDefault(in.SummaryType, "comprehensive"), clip(in.Text))
}

func riskPrompt(in RiskInput) string {
	return fmt.Sprintf(`Assess the litigation risk of this matter.

Case type: %s
Description: %s
Jurisdiction: %s
Estimated case value: %s

Respond with JSON:
{"successProbability": integer 0-100, "confidenceLevel": integer 0-100, "riskFactors": [{"factor": string, "severity": "high"|"medium"|"low", "explanation": string}], "strengths": [string], "weaknesses": [string], "settlementRange": {"low": string, "high": string, "recommended": string}, "recommendations": [string], "timeline": string}`,
		strings.TrimSpace(in.CaseType), strings.TrimSpace(in.Description),
		orDefault(in.Jurisdiction, "not specified"), orDefault(in.CaseValue, "not specified"))
}

func lawAgentPrompt(in QuestionInput) string {
	return fmt.Sprintf(`Answer the legal question as a careful research attorney would.

Question: %s

Respond with JSON:
{"answer": string, "legalBasis": [string], "confidence": integer 0-100, "followUpQuestions": [string], "disclaimer": string}`,
		strings.TrimSpace(in.Question))
}

func webSearchPrompt(in WebSearchInput) string {
	return fmt.Sprintf(`List the most useful public legal resources for this query.

Query: %s

Respond with JSON:
{"results": [{"title": string, "url": string, "snippet": string, "source": string}], "summary": string}`,
		strings.TrimSpace(in.Query))
}

func quickQuestionPrompt(in QuestionInput) string {
	return fmt.Sprintf(`Answer briefly, in at most three sentences.

Question: %s

Respond with JSON:
{"answer": string}`, strings.TrimSpace(in.Question))
}

func generatePrompt(in GenerateInput) string {
	var source string
	if in.InputMethod == InputMethodForm {
		source = "Details provided by form:\n" + fields(in.FormData)
	} else {
		source = "Instructions:\n" + clip(in.TextContent)
	}
	return fmt.Sprintf(`Draft a %s.

%s
Respond with JSON:
{"title": string, "sections": [{"heading": string, "content": string, "items": [string]}], "summary": string, "warnings": [string]}`,
		in.DocumentType, source)
}

func analyzePrompt(in AnalyzeInput) string {
	return fmt.Sprintf(`Review the document "%s" for legal issues, weak points and missing clauses.

Document:
"""
%s
"""

Respond with JSON:
{"summary": string, "documentType": string, "overallScore": integer 0-100, "issues": [{"type": string, "severity": "high"|"medium"|"low", "item": string, "explanation": string, "suggestion": string}], "weakPoints": [{"item": string, "explanation": string, "priority": "high"|"medium"|"low"}], "missingClauses": [string], "strengths": [string]}`,
		orDefault(in.FileName, "untitled"), clip(in.Text))
}

func improvePrompt(in ImproveInput) string {
	return fmt.Sprintf(`Rewrite one part of a legal document to fix the flagged %s.

Flagged item: %s

Full document for context:
"""
%s
"""

Respond with JSON:
{"improvedText": string, "explanation": string}`,
		strings.TrimSpace(in.Type), strings.TrimSpace(in.Item), clip(in.DocumentContent))
}
