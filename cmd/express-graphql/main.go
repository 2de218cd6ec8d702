// Command express-graphql runs a demo GraphQL HTTP endpoint backed by a
// small in-memory resolver set. It exists to exercise the handler end to
// end: method gating, GraphiQL negotiation, tracing, CORS.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/musicglue/express-graphql/internal/eventbus"
	"github.com/musicglue/express-graphql/internal/otel"
	"github.com/musicglue/express-graphql/server"
)

const usage = `express-graphql — GraphQL over HTTP demo server

FLAGS:
  -server.addr <addr>          HTTP listen address (default: :8080)
  -server.pretty               Pretty-print JSON responses
  -server.graphiql <bool>      Serve GraphiQL to HTML-preferring clients (default: true)
  -server.timeout <duration>   Per-request timeout, e.g. 10s (default: 10s)
  -server.max-body <bytes>     Max request body size, 0 = unlimited (default: 1048576)
  -server.cors-origin <origin> Allowed CORS origin. Repeatable; * allows any
  -otel.endpoint <addr>        OTLP collector endpoint
  -otel.service <name>         OpenTelemetry service name (default: express-graphql)
`

type stringListFlag []string

func (s *stringListFlag) String() string { return "" }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	addr := ":8080"
	pretty := false
	graphiql := true
	timeout := 10 * time.Second
	maxBody := int64(1 << 20)
	otelEndpoint := ""
	otelService := "express-graphql"
	var corsOrigins stringListFlag

	fs := flag.NewFlagSet("express-graphql", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer)) // silence automatic output
	fs.StringVar(&addr, "server.addr", addr, "HTTP listen address")
	fs.BoolVar(&pretty, "server.pretty", pretty, "Pretty-print JSON responses")
	fs.BoolVar(&graphiql, "server.graphiql", graphiql, "Serve GraphiQL to HTML-preferring clients")
	fs.DurationVar(&timeout, "server.timeout", timeout, "Per-request timeout")
	fs.Int64Var(&maxBody, "server.max-body", maxBody, "Max request body size")
	fs.Var(&corsOrigins, "server.cors-origin", "Allowed CORS origin")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, usage)
		return err
	}

	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	eng, err := newDemoEngine()
	if err != nil {
		return fmt.Errorf("demo engine: %w", err)
	}

	sopts := []server.Option{
		server.WithGraphiQL(graphiql),
		server.WithMaxBodyBytes(maxBody),
	}
	if pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if timeout > 0 {
		sopts = append(sopts, server.WithTimeout(timeout))
	}
	if len(corsOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(corsOrigins...))
	}
	h, err := server.New(eng, sopts...)
	if err != nil {
		return fmt.Errorf("server init: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", h)

	log.Printf("GraphQL server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
