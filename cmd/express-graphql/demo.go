package main

import (
	"context"
	"sync"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/musicglue/express-graphql/engine"
)

const demoSDL = `
type Query {
  hello: String!
  echo(message: String!): String!
  message: String
}
type Mutation {
  setMessage(message: String!): String
}
`

// resolver computes one root field from its (uncoerced) arguments.
type resolver func(ctx context.Context, args map[string]any) (any, error)

// demoStore is the seeded in-memory state behind the demo resolvers.
type demoStore struct {
	mu      sync.RWMutex
	message string
}

func newDemoEngine() (*engine.GraphQL, error) {
	store := &demoStore{message: "seed message"}
	resolvers := map[string]resolver{
		"hello": func(context.Context, map[string]any) (any, error) {
			return "Hello world!", nil
		},
		"echo": func(_ context.Context, args map[string]any) (any, error) {
			return args["message"], nil
		},
		"message": func(context.Context, map[string]any) (any, error) {
			store.mu.RLock()
			defer store.mu.RUnlock()
			return store.message, nil
		},
		"setMessage": func(_ context.Context, args map[string]any) (any, error) {
			msg, _ := args["message"].(string)
			store.mu.Lock()
			store.message = msg
			store.mu.Unlock()
			return msg, nil
		},
	}
	return engine.NewFromSDL(demoSDL, executeWith(resolvers))
}

// executeWith resolves the top level of the selected operation through the
// resolver table. It deliberately goes no deeper: the demo schema is flat,
// and full execution belongs to a real engine behind engine.ExecuteFunc.
func executeWith(resolvers map[string]resolver) engine.ExecuteFunc {
	return func(ctx context.Context, _ *ast.Schema, req engine.Request) (*engine.Result, error) {
		op := req.Document.Operations.ForName(req.OperationName)
		if op == nil {
			return nil, gqlerror.Errorf("operation %q not found", req.OperationName)
		}

		data := map[string]any{}
		var errs gqlerror.List
		for _, sel := range op.SelectionSet {
			field, ok := sel.(*ast.Field)
			if !ok {
				continue
			}
			fn, ok := resolvers[field.Name]
			if !ok {
				errs = append(errs, gqlerror.Errorf("no resolver for field %q", field.Name))
				data[field.Alias] = nil
				continue
			}
			v, err := fn(ctx, fieldArgs(field, req.Variables))
			if err != nil {
				errs = append(errs, &gqlerror.Error{
					Message: err.Error(),
					Path:    ast.Path{ast.PathName(field.Alias)},
				})
				v = nil
			}
			data[field.Alias] = v
		}
		return &engine.Result{Data: data, HasData: true, Errors: errs}, nil
	}
}

// fieldArgs flattens argument values: literals by their raw text, variables
// by lookup. Good enough for the demo's string-typed schema.
func fieldArgs(field *ast.Field, variables map[string]any) map[string]any {
	args := make(map[string]any, len(field.Arguments))
	for _, arg := range field.Arguments {
		if arg.Value == nil {
			continue
		}
		if arg.Value.Kind == ast.Variable {
			args[arg.Name] = variables[arg.Value.Raw]
			continue
		}
		args[arg.Name] = arg.Value.Raw
	}
	return args
}
