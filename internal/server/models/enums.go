package models

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/lawhelper/internal/common"
)

type CaseType string

const (
	CaseTypePersonalInjury       CaseType = "personal-injury"
	CaseTypeEmployment           CaseType = "employment"
	CaseTypeFamily               CaseType = "family"
	CaseTypeCriminal             CaseType = "criminal"
	CaseTypeCorporate            CaseType = "corporate"
	CaseTypeRealEstate           CaseType = "real-estate"
	CaseTypeImmigration          CaseType = "immigration"
	CaseTypeIntellectualProperty CaseType = "intellectual-property"
	CaseTypeContract             CaseType = "contract"
	CaseTypeMedicalMalpractice   CaseType = "medical-malpractice"
	CaseTypeOther                CaseType = "other"
)

var caseTypes = []CaseType{
	CaseTypePersonalInjury, CaseTypeEmployment, CaseTypeFamily, CaseTypeCriminal,
	CaseTypeCorporate, CaseTypeRealEstate, CaseTypeImmigration,
	CaseTypeIntellectualProperty, CaseTypeContract, CaseTypeMedicalMalpractice,
	CaseTypeOther,
}

// ParseCaseType validates s against the closed set of case types.
func ParseCaseType(s string) (CaseType, error) {
	return parseEnum("caseType", s, caseTypes)
}

type CaseStatus string

const (
	CaseStatusActive  CaseStatus = "active"
	CaseStatusPending CaseStatus = "pending"
	CaseStatusClosed  CaseStatus = "closed"
)

var caseStatuses = []CaseStatus{CaseStatusActive, CaseStatusPending, CaseStatusClosed}

// ParseCaseStatus validates s; an empty value means active.
func ParseCaseStatus(s string) (CaseStatus, error) {
	if strings.TrimSpace(s) == "" {
		return CaseStatusActive, nil
	}
	return parseEnum("status", s, caseStatuses)
}

type DocumentType string

const (
	DocumentTypeContract  DocumentType = "contract"
	DocumentTypeMotion    DocumentType = "motion"
	DocumentTypeBrief     DocumentType = "brief"
	DocumentTypeLetter    DocumentType = "letter"
	DocumentTypeMemo      DocumentType = "memo"
	DocumentTypePleading  DocumentType = "pleading"
	DocumentTypeAgreement DocumentType = "agreement"
	DocumentTypeWill      DocumentType = "will"
	DocumentTypeNDA       DocumentType = "nda"
	DocumentTypeComplaint DocumentType = "complaint"
	DocumentTypeAnalysis  DocumentType = "analysis"
	DocumentTypeSummary   DocumentType = "summary"
	DocumentTypeOther     DocumentType = "other"
)

var documentTypes = []DocumentType{
	DocumentTypeContract, DocumentTypeMotion, DocumentTypeBrief, DocumentTypeLetter,
	DocumentTypeMemo, DocumentTypePleading, DocumentTypeAgreement, DocumentTypeWill,
	DocumentTypeNDA, DocumentTypeComplaint, DocumentTypeAnalysis, DocumentTypeSummary,
	DocumentTypeOther,
}

func ParseDocumentType(s string) (DocumentType, error) {
	return parseEnum("documentType", s, documentTypes)
}

func parseEnum[T ~string](field, s string, allowed []T) (T, error) {
	v := T(strings.TrimSpace(s))
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	if v == "" {
		return "", common.NewFieldError(field, "is required")
	}
	return "", common.NewFieldError(field, fmt.Sprintf("unknown value %q", s))
}
