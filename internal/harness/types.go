package harness

import "github.com/roach88/extsql/internal/graph"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expectation and assertion matches.
	Pass bool `json:"pass"`

	// Order lists descriptor names in installation order. Empty when the
	// build failed.
	Order []string `json:"order"`

	// Script is the rendered installation script.
	Script string `json:"script,omitempty"`

	// Fingerprint is the content address of the descriptor set.
	Fingerprint string `json:"fingerprint,omitempty"`

	// ErrorCode and ErrorMessage describe the build error, if any.
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	// Errors contains expectation failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	plan *graph.Plan
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Order:  []string{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Plan returns the built plan, or nil if the build failed.
func (r *Result) Plan() *graph.Plan {
	return r.plan
}
