package harness

import "github.com/roach88/trainaudit/internal/audit"

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Errors holds one message per failed assertion.
	Errors []string `json:"errors,omitempty"`

	// Audit is the full audit result the assertions ran against.
	Audit *audit.Result `json:"audit"`
}

// NewResult creates a passing result for an audit.
func NewResult(res *audit.Result) *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
		Audit:  res,
	}
}

// AddError records a failed assertion and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
