package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

const testSDL = `
type Query {
  hello: String
  user(id: ID!): String
}
type Mutation {
  setHello(value: String!): String
}
`

func newTestEngine(t *testing.T, fn ExecuteFunc) *GraphQL {
	t.Helper()
	g, err := NewFromSDL(testSDL, fn)
	require.NoError(t, err)
	return g
}

func TestNewRequiresSchema(t *testing.T) {
	_, err := New(nil, nil)
	require.Error(t, err)
}

func TestNewFromSDLRejectsBadSchema(t *testing.T) {
	_, err := NewFromSDL(`type Query {`, nil)
	require.Error(t, err)
}

func TestParseReturnsGQLError(t *testing.T) {
	g := newTestEngine(t, nil)
	_, err := g.Parse("{ hello")
	require.Error(t, err)
	require.IsType(t, &gqlerror.Error{}, g.FormatError(err))
}

func TestValidateUndefinedField(t *testing.T) {
	g := newTestEngine(t, nil)
	doc, err := g.Parse("{ nope }")
	require.NoError(t, err)
	errs := g.Validate(doc)
	require.NotEmpty(t, errs)
}

func TestValidatePasses(t *testing.T) {
	g := newTestEngine(t, nil)
	doc, err := g.Parse("{ hello }")
	require.NoError(t, err)
	require.Empty(t, g.Validate(doc))
}

func TestIdentifyOperation(t *testing.T) {
	g := newTestEngine(t, nil)

	doc, err := g.Parse(`query A { hello } mutation B { setHello(value: "x") }`)
	require.NoError(t, err)

	require.Equal(t, ast.Query, g.IdentifyOperation(doc, "A").Operation)
	require.Equal(t, ast.Mutation, g.IdentifyOperation(doc, "B").Operation)
	// Ambiguous without a name, absent for unknown names.
	require.Nil(t, g.IdentifyOperation(doc, ""))
	require.Nil(t, g.IdentifyOperation(doc, "C"))

	single, err := g.Parse("{ hello }")
	require.NoError(t, err)
	require.NotNil(t, g.IdentifyOperation(single, ""))
}

func TestExecuteDelegates(t *testing.T) {
	var gotOp string
	g := newTestEngine(t, func(ctx context.Context, schema *ast.Schema, req Request) (*Result, error) {
		gotOp = req.OperationName
		return &Result{Data: map[string]any{"hello": "world"}, HasData: true}, nil
	})
	doc, err := g.Parse("query Hi { hello }")
	require.NoError(t, err)
	res, err := g.Execute(context.Background(), Request{Document: doc, OperationName: "Hi"})
	require.NoError(t, err)
	require.True(t, res.HasData)
	require.Equal(t, "Hi", gotOp)
}

func TestExecuteWithoutFunc(t *testing.T) {
	g := newTestEngine(t, nil)
	_, err := g.Execute(context.Background(), Request{})
	require.Error(t, err)
}

func TestFormatErrorPassthroughAndWrap(t *testing.T) {
	g := newTestEngine(t, nil)

	orig := &gqlerror.Error{Message: "boom", Extensions: map[string]any{"code": "X"}}
	require.Same(t, orig, g.FormatError(orig))

	wrapped := g.FormatError(errors.New("plain"))
	require.Equal(t, "plain", wrapped.Message)
}
