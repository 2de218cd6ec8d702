// Package engine defines the narrow seam between the HTTP handler and the
// query-execution engine: parsing, validation, operation lookup, execution,
// and error formatting. The handler never reaches past this interface.
package engine

import (
	"context"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Request carries the inputs of one execution.
type Request struct {
	Document      *ast.QueryDocument
	RootValue     any
	Variables     map[string]any
	OperationName string
}

// Result is the engine's answer for one request. HasData reports whether the
// response carries a data key at all: a result that failed before any field
// was resolved has no data key, which is distinct from data being null.
type Result struct {
	Data    any
	HasData bool
	Errors  gqlerror.List
}

// ErrorResult wraps errs into a data-less Result.
func ErrorResult(errs ...*gqlerror.Error) *Result {
	return &Result{Errors: errs}
}

// Engine is the execution collaborator consumed by the HTTP handler.
//
// Parse and Validate cover the pre-execution pipeline; IdentifyOperation
// resolves which operation of a document would run for a given (possibly
// empty) operation name, returning nil when that is ambiguous or missing.
// Execute runs the document and may return partial data alongside errors.
// Every error the handler puts on the wire is first passed through
// FormatError, so one engine controls the error shape end to end.
type Engine interface {
	Parse(query string) (*ast.QueryDocument, error)
	Validate(doc *ast.QueryDocument) gqlerror.List
	IdentifyOperation(doc *ast.QueryDocument, operationName string) *ast.OperationDefinition
	Execute(ctx context.Context, req Request) (*Result, error)
	FormatError(err error) *gqlerror.Error
}
