// internal/workers/application/submit-case-application/models.go
package submitcaseapplication

type Input struct {
	CaseReferenceNumber string `json:"caseReferenceNumber"`
	TargetSystem        string `json:"targetSystem,omitempty"` // defaults to the system the case was mapped from
	User                User   `json:"user"`
}

type User struct {
	LoginID  string `json:"loginId"`
	Username string `json:"username,omitempty"`
	UserType string `json:"userType,omitempty"`
}

type Output struct {
	SubmissionID        string `json:"submissionId"`
	TransactionID       string `json:"transactionId"`
	TargetSystem        string `json:"targetSystem"`
	CaseReferenceNumber string `json:"caseReferenceNumber"`
	MeansAssessed       bool   `json:"meansAssessed"`
	MeritsAssessed      bool   `json:"meritsAssessed"`
}
