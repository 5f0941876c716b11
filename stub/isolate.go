package stub

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrSynthesisPanic is reported when resolution or synthesis of a contract panics.
	ErrSynthesisPanic = errors.New("stub: panic during synthesis")

	// ErrNoSyntaxTree is returned when an analyzer yields neither a tree nor an error.
	ErrNoSyntaxTree = errors.New("stub: analyzer returned no syntax tree")

	// ErrNoSemanticModel is returned when an analyzer yields neither a model nor an error.
	ErrNoSemanticModel = errors.New("stub: analyzer returned no semantic model")
)

// DocumentError reports that a document's tree or semantic model could not be obtained.
type DocumentError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *DocumentError) Error() string {
	// Example: stub: document "store.go": no such file
	return "stub: document " + strconv.Quote(e.Path) + ": " + e.Err.Error()
}

func (e *DocumentError) Unwrap() error { return e.Err }

// isolate runs one synthesis attempt for one contract.
//
// On success it returns the unit produced by attempt. On error, or when attempt
// panics, it returns out unchanged together with the error; a panic is
// converted into an error wrapping ErrSynthesisPanic. It never panics itself.
func isolate[U any](out U, attempt func(U) (U, error)) (next U, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			next = out
			err = fmt.Errorf("%w: %v", ErrSynthesisPanic, rec)
		}
	}()

	next, err = attempt(out)
	if err != nil {
		return out, err
	}
	return next, nil
}

// contractFailure builds the diagnostic recorded for a skipped contract.
func contractFailure(doc Document, contract string, err error) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Document: doc.Path,
		Contract: contract,
		Message:  "could not generate stub",
		Err:      err,
	}
}
