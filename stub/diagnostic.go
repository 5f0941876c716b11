package stub

import (
	"strconv"
	"strings"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Diagnostic is a non-fatal message attached to a document or a contract.
type Diagnostic struct {
	Severity Severity

	// Document is the path of the document the message belongs to.
	Document string

	// Contract names the contract involved, empty for document-level messages.
	Contract string

	Message string

	// Err is the underlying error, if any.
	Err error
}

// String formats the diagnostic as a single line.
//
// Example: error: store.go: contract "example.com/store.Store": could not generate stub: boom
func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(d.Severity.String())
	b.WriteString(": ")
	if d.Document != "" {
		b.WriteString(d.Document)
		b.WriteString(": ")
	}
	if d.Contract != "" {
		b.WriteString("contract ")
		b.WriteString(strconv.Quote(d.Contract))
		b.WriteString(": ")
	}
	b.WriteString(d.Message)
	if d.Err != nil {
		b.WriteString(": ")
		b.WriteString(d.Err.Error())
	}
	return b.String()
}
