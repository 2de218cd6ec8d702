package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

// ExecuteFunc resolves a validated document. Implementations own field
// resolution entirely; the surrounding GraphQL engine handles everything up
// to (and including) validation.
type ExecuteFunc func(ctx context.Context, schema *ast.Schema, req Request) (*Result, error)

// GraphQL is an Engine backed by gqlparser for parsing and validation, with
// execution delegated to an ExecuteFunc.
type GraphQL struct {
	schema  *ast.Schema
	execute ExecuteFunc
}

// New builds an Engine over an already-loaded schema.
func New(schema *ast.Schema, execute ExecuteFunc) (*GraphQL, error) {
	if schema == nil {
		return nil, errors.New("engine: schema is required")
	}
	return &GraphQL{schema: schema, execute: execute}, nil
}

// NewFromSDL loads the schema from SDL source and builds an Engine over it.
func NewFromSDL(sdl string, execute ExecuteFunc) (*GraphQL, error) {
	schema, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: sdl})
	if err != nil {
		return nil, fmt.Errorf("engine: load schema: %w", err)
	}
	return &GraphQL{schema: schema, execute: execute}, nil
}

// Schema returns the schema handle the engine was built over.
func (g *GraphQL) Schema() *ast.Schema { return g.schema }

func (g *GraphQL) Parse(query string) (*ast.QueryDocument, error) {
	return parser.ParseQuery(&ast.Source{Input: query})
}

func (g *GraphQL) Validate(doc *ast.QueryDocument) gqlerror.List {
	return validator.Validate(g.schema, doc)
}

// IdentifyOperation resolves the operation that would run for operationName.
// An empty name resolves only when the document holds exactly one operation;
// anything else is ambiguous and yields nil.
func (g *GraphQL) IdentifyOperation(doc *ast.QueryDocument, operationName string) *ast.OperationDefinition {
	return doc.Operations.ForName(operationName)
}

func (g *GraphQL) Execute(ctx context.Context, req Request) (*Result, error) {
	if g.execute == nil {
		return nil, errors.New("engine: no execute function configured")
	}
	return g.execute(ctx, g.schema, req)
}

// FormatError keeps engine errors as-is and wraps everything else, so every
// error serializes with the same message/locations/path/extensions shape.
func (g *GraphQL) FormatError(err error) *gqlerror.Error {
	var gqlErr *gqlerror.Error
	if errors.As(err, &gqlErr) {
		return gqlErr
	}
	return &gqlerror.Error{Message: err.Error()}
}
