package engine

import (
	"context"
	"sync"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Mock is an Engine for tests: it parses and validates against a real schema
// but lets each stage be scripted, and records the stages it was asked to run.
type Mock struct {
	mu    sync.Mutex
	calls []string

	base *GraphQL

	// When set, the corresponding stage returns the scripted value instead
	// of delegating to the real schema.
	ParseErr     error
	ValidateErrs gqlerror.List
	ExecuteFn    ExecuteFunc
}

// NewMock builds a Mock over sdl. Execute runs fn, or fails when fn is nil.
func NewMock(sdl string, fn ExecuteFunc) (*Mock, error) {
	base, err := NewFromSDL(sdl, fn)
	if err != nil {
		return nil, err
	}
	return &Mock{base: base, ExecuteFn: fn}, nil
}

// StaticExecute returns an ExecuteFunc that always yields data.
func StaticExecute(data any) ExecuteFunc {
	return func(context.Context, *ast.Schema, Request) (*Result, error) {
		return &Result{Data: data, HasData: true}, nil
	}
}

// FailingExecute returns an ExecuteFunc that always returns err.
func FailingExecute(err error) ExecuteFunc {
	return func(context.Context, *ast.Schema, Request) (*Result, error) {
		return nil, err
	}
}

// Calls reports the stages run so far, in order.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *Mock) record(stage string) {
	m.mu.Lock()
	m.calls = append(m.calls, stage)
	m.mu.Unlock()
}

func (m *Mock) Parse(query string) (*ast.QueryDocument, error) {
	m.record("parse")
	if m.ParseErr != nil {
		return nil, m.ParseErr
	}
	return m.base.Parse(query)
}

func (m *Mock) Validate(doc *ast.QueryDocument) gqlerror.List {
	m.record("validate")
	if m.ValidateErrs != nil {
		return m.ValidateErrs
	}
	return m.base.Validate(doc)
}

func (m *Mock) IdentifyOperation(doc *ast.QueryDocument, operationName string) *ast.OperationDefinition {
	return m.base.IdentifyOperation(doc, operationName)
}

func (m *Mock) Execute(ctx context.Context, req Request) (*Result, error) {
	m.record("execute")
	if m.ExecuteFn == nil {
		return m.base.Execute(ctx, req)
	}
	return m.ExecuteFn(ctx, m.base.Schema(), req)
}

func (m *Mock) FormatError(err error) *gqlerror.Error {
	return m.base.FormatError(err)
}
