package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"
)

// MockProvider answers every operation with a fixed, schema-valid reply so
// the server runs without an API key. Replies depend only on the request.
type MockProvider struct{}

func NewMockProvider() *MockProvider { return &MockProvider{} }

func (m *MockProvider) Name() string  { return "mock" }
func (m *MockProvider) Model() string { return "mock-legal-v1" }

func (m *MockProvider) Complete(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = "the matter"
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(req.Prompt))
	seed := int(h.Sum32() % 1000)

	var v any
	switch req.Operation {
	case OpLegalSearch:
		v = LegalSearchResult{
			Summary: fmt.Sprintf("Research overview for %q.", subject),
			Cases: []CaseReference{{
				Name: "Smith v. Jones", Citation: "123 F.3d 456", Court: "9th Cir.", Year: "1999",
				Relevance: "Leading authority on the standard of care.",
			}},
			Statutes: []StatuteReference{{
				Title: "Civil Code 1714", Citation: "Cal. Civ. Code § 1714",
				Description: "General duty of ordinary care.",
			}},
			KeyPoints: []string{"Identify the controlling jurisdiction.", "Confirm limitation periods."},
		}
	case OpSummarize:
		v = DocumentSummary{
			Summary:         fmt.Sprintf("A %s summary of the submitted document.", subject),
			KeyPoints:       []string{"Defines the parties and their obligations."},
			Parties:         []string{"Party A", "Party B"},
			ImportantDates:  []string{"Effective date as stated in the document."},
			LegalIssues:     []string{"Scope of indemnification."},
			Recommendations: []string{"Have counsel confirm the termination terms."},
		}
	case OpRiskAnalysis:
		v = RiskAnalysis{
			SuccessProbability: 45 + seed%40,
			ConfidenceLevel:    60 + seed%30,
			RiskFactors: []RiskFactor{
				{Factor: "Comparative fault", Severity: SeverityMedium, Explanation: "The defense may argue shared responsibility."},
				{Factor: "Documentation gaps", Severity: SeverityLow, Explanation: "Missing records weaken damages proof."},
			},
			Strengths:       []string{"Clear liability facts."},
			Weaknesses:      []string{"Pre-existing conditions may be raised."},
			SettlementRange: SettlementRange{Low: "$25,000", High: "$90,000", Recommended: "$55,000"},
			Recommendations: []string{"Gather complete medical records.", "Obtain witness statements."},
			Timeline:        "12-18 months",
		}
	case OpLawAgent:
		v = AgentAnswer{
			Answer:            fmt.Sprintf("In general terms, %s depends on the governing jurisdiction.", subject),
			LegalBasis:        []string{"Applicable state statutes", "Controlling appellate decisions"},
			Confidence:        70,
			FollowUpQuestions: []string{"Which jurisdiction applies?"},
			Disclaimer:        "This is legal information, not legal advice.",
		}
	case OpWebSearch:
		v = WebSearchResult{
			Results: []WebResult{{
				Title: "Legal Information Institute", URL: "https://www.law.cornell.edu/",
				Snippet: "Free access to primary legal materials.", Source: "Cornell LII",
			}},
			Summary: fmt.Sprintf("Public resources related to %q.", subject),
		}
	case OpQuickQuestion:
		v = QuickAnswer{Answer: fmt.Sprintf("Short answer about %s: it depends on the facts and jurisdiction.", subject)}
	case OpGenerateDocument:
		title := strings.ToUpper(subject)
		v = GeneratedDocument{
			Title: title,
			Sections: []GeneratedSection{
				{Heading: "Parties", Content: "This agreement is made between the parties identified below."},
				{Heading: "Terms", Content: "The parties agree as follows:", Items: []string{"Confidentiality", "Term and termination"}},
				{Heading: "Signatures", Content: "Signed by the authorized representatives."},
			},
			Summary:  fmt.Sprintf("Draft %s prepared from the supplied details.", subject),
			Warnings: []string{"Review with counsel before signing."},
		}
	case OpAnalyzeDocument:
		v = DocumentAnalysis{
			Summary:      fmt.Sprintf("Review of %s.", subject),
			DocumentType: "contract",
			OverallScore: 60 + seed%30,
			Issues: []Issue{{
				Type: "ambiguity", Severity: SeverityMedium, Item: "Payment terms",
				Explanation: "The due date is not defined.", Suggestion: "State a fixed number of days after invoice.",
			}},
			WeakPoints: []WeakPoint{{
				Item: "Termination", Explanation: "No notice period is given.", Priority: SeverityHigh,
			}},
			MissingClauses: []string{"Governing law", "Dispute resolution"},
			Strengths:      []string{"Parties are clearly identified."},
		}
	case OpImproveSection:
		v = ImprovedSection{
			ImprovedText: fmt.Sprintf("%s shall be set out in clear and unambiguous terms.", subject),
			Explanation:  "The revision removes the ambiguity flagged in the review.",
		}
	default:
		return "", fmt.Errorf("mock: unknown operation %q", req.Operation)
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
