package domain

import dErrors "medgate/pkg/domain-errors"

// OperationKind identifies what the caller wants the platform to do. The set
// mirrors the agent intents the gateway fronts.
type OperationKind string

const (
	KindPatientSearch    OperationKind = "patient_search"
	KindAppointmentQuery OperationKind = "appointment_query"
	KindFinancialSummary OperationKind = "financial_summary"
	KindScheduleChange   OperationKind = "schedule_change"
	KindReportGeneration OperationKind = "report_generation"
	KindDataExport       OperationKind = "data_export"
)

// DataCategory labels a class of data touched by an operation. Consent scopes
// are expressed as sets of categories.
type DataCategory string

const (
	CategoryClinical   DataCategory = "clinical"
	CategoryFinancial  DataCategory = "financial"
	CategoryContact    DataCategory = "contact"
	CategoryScheduling DataCategory = "scheduling"
)

// operationKinds is the single source of truth for supported kinds and their
// static consent classification. Consent-requiring kinds touch patient-private
// data; the rest operate on operational clinic data only.
var operationKinds = map[OperationKind]struct {
	consentRequired bool
	multiStep       bool
	permission      string
	categories      []DataCategory
}{
	KindPatientSearch: {
		consentRequired: true,
		permission:      "patients:read",
		categories:      []DataCategory{CategoryClinical, CategoryContact},
	},
	KindAppointmentQuery: {
		permission: "appointments:read",
		categories: []DataCategory{CategoryScheduling},
	},
	KindFinancialSummary: {
		consentRequired: true,
		permission:      "finance:read",
		categories:      []DataCategory{CategoryFinancial},
	},
	KindScheduleChange: {
		multiStep:  true,
		permission: "appointments:write",
		categories: []DataCategory{CategoryScheduling},
	},
	KindReportGeneration: {
		permission: "reports:generate",
		categories: []DataCategory{CategoryScheduling},
	},
	KindDataExport: {
		consentRequired: true,
		permission:      "data:export",
		categories:      []DataCategory{CategoryClinical, CategoryFinancial, CategoryContact, CategoryScheduling},
	},
}

// ParseOperationKind constructs an OperationKind from external input.
func ParseOperationKind(s string) (OperationKind, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "operation kind cannot be empty")
	}
	k := OperationKind(s)
	if !k.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid operation kind")
	}
	return k, nil
}

// IsValid checks if the kind is one of the supported enum values.
func (k OperationKind) IsValid() bool {
	_, ok := operationKinds[k]
	return ok
}

// ConsentRequired reports whether this kind may only run behind an explicit,
// verifiable consent signal.
func (k OperationKind) ConsentRequired() bool {
	return operationKinds[k].consentRequired
}

// MultiStep reports whether this kind follows the intent/confirm/execute
// workflow instead of running in a single request.
func (k OperationKind) MultiStep() bool {
	return operationKinds[k].multiStep
}

// RequiredPermission is the permission a principal must hold to run this kind.
func (k OperationKind) RequiredPermission() string {
	return operationKinds[k].permission
}

// DataCategories are the categories of data this kind touches. Consent
// records must cover all of them for consent-requiring kinds.
func (k OperationKind) DataCategories() []DataCategory {
	return append([]DataCategory(nil), operationKinds[k].categories...)
}

// String returns the string representation of the kind.
func (k OperationKind) String() string {
	return string(k)
}

// ParseDataCategory constructs a DataCategory from external input.
func ParseDataCategory(s string) (DataCategory, error) {
	switch c := DataCategory(s); c {
	case CategoryClinical, CategoryFinancial, CategoryContact, CategoryScheduling:
		return c, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "invalid data category")
}
