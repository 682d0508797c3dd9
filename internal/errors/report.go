package errors

import (
	"encoding/json"
	"errors"
	"sort"

	"github.com/lumen-lang/lumen/internal/ast"
)

// Report is the structured diagnostic type for the loader. The
// canonicalizer returns its failures as Reports (via WrapReport); the
// coordinator copies a Report's Code and Message into a bus.Problem.
type Report struct {
	Schema  string         `json:"schema"` // always "lumen.problem/v1"
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Module  string         `json:"module,omitempty"`
	Span    *ast.Span      `json:"span,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// ReportError wraps a Report as an error so it survives errors.As unwrapping.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a *Report from an error chain, if present.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// WrapReport wraps a Report as an error.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON renders the report as deterministic (sorted-key) JSON.
func (r *Report) ToJSON() (string, error) {
	data, err := marshalSorted(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// marshalSorted marshals v to JSON with map keys sorted, giving a
// deterministic byte representation across repeated runs — relied on by the
// result-determinism property (problems, as a set, compare equal).
func marshalSorted(v any) ([]byte, error) {
	// encoding/json already sorts map[string]... keys; this wrapper exists so
	// future non-map fields (e.g. slices of Problem) can be sorted explicitly
	// by callers before reaching here.
	return json.Marshal(v)
}

// New builds a Report for the given code/phase/message.
func New(code, phase, message string) *Report {
	return &Report{Schema: "lumen.problem/v1", Code: code, Phase: phase, Message: message}
}

// WithModule sets the owning module name.
func (r *Report) WithModule(name string) *Report {
	r.Module = name
	return r
}

// WithSpan sets the source span.
func (r *Report) WithSpan(span ast.Span) *Report {
	r.Span = &span
	return r
}

// WithData attaches structured data, sorted by key when later serialized.
func (r *Report) WithData(data map[string]any) *Report {
	r.Data = data
	return r
}

// SortedDataKeys returns the Data map's keys in sorted order, for callers
// that need deterministic iteration (e.g. building a resolution trace).
func (r *Report) SortedDataKeys() []string {
	keys := make([]string, 0, len(r.Data))
	for k := range r.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
