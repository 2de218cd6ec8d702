package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/musicglue/express-graphql/engine"
)

func execute(t *testing.T, eng *engine.GraphQL, query string, vars map[string]any) *engine.Result {
	t.Helper()
	doc, err := eng.Parse(query)
	require.NoError(t, err)
	require.Empty(t, eng.Validate(doc))
	res, err := eng.Execute(context.Background(), engine.Request{Document: doc, Variables: vars})
	require.NoError(t, err)
	return res
}

func TestDemoQueryFields(t *testing.T) {
	eng, err := newDemoEngine()
	require.NoError(t, err)

	res := execute(t, eng, `{ hello echo(message: "hi") }`, nil)
	require.Empty(t, res.Errors)
	data := res.Data.(map[string]any)
	require.Equal(t, "Hello world!", data["hello"])
	require.Equal(t, "hi", data["echo"])
}

func TestDemoVariables(t *testing.T) {
	eng, err := newDemoEngine()
	require.NoError(t, err)

	res := execute(t, eng, `query E($m: String!) { echo(message: $m) }`, map[string]any{"m": "via var"})
	require.Empty(t, res.Errors)
	require.Equal(t, "via var", res.Data.(map[string]any)["echo"])
}

func TestDemoMutationRoundTrip(t *testing.T) {
	eng, err := newDemoEngine()
	require.NoError(t, err)

	res := execute(t, eng, `mutation { setMessage(message: "updated") }`, nil)
	require.Empty(t, res.Errors)

	res = execute(t, eng, `{ message }`, nil)
	require.Equal(t, "updated", res.Data.(map[string]any)["message"])
}

func TestDemoAliases(t *testing.T) {
	eng, err := newDemoEngine()
	require.NoError(t, err)

	res := execute(t, eng, `{ greeting: hello }`, nil)
	require.Equal(t, "Hello world!", res.Data.(map[string]any)["greeting"])
}
