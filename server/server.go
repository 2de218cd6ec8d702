// Package server exposes a query-execution engine over HTTP GET and POST,
// with an optional GraphiQL fallback for clients that prefer HTML.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/musicglue/express-graphql/engine"
	"github.com/musicglue/express-graphql/internal/eventbus"
	"github.com/musicglue/express-graphql/internal/events"
	"github.com/musicglue/express-graphql/internal/reqid"
)

// Handler is an http.Handler serving a GraphQL endpoint. It classifies the
// request, negotiates the response shape, runs the engine, and writes
// exactly one response per request.
type Handler struct {
	eng engine.Engine
	opt Options
}

type Options struct {
	// Timeout sets a default timeout if the incoming request context has none.
	// 0 means no default timeout.
	Timeout time.Duration

	// Pretty enables indented JSON responses.
	Pretty bool

	// MaxBodyBytes limits the size of the request body. 0 means unlimited.
	MaxBodyBytes int64

	// CORS configuration. If AllowedOrigins is empty, CORS is disabled.
	CORS CORSOptions

	// GraphiQL enables the in-browser IDE when true.
	GraphiQL bool

	// RootValue is passed through to the engine's execute step.
	RootValue any

	// DecodeBody overrides the default body decoding (json, form, graphql
	// media types).
	DecodeBody BodyDecoder

	// RenderGraphiQL overrides the built-in GraphiQL page.
	RenderGraphiQL GraphiQLRenderer

	// resolve derives per-request options from the base options. Set via
	// WithOptionsFunc; resolved once per request, fixed afterwards.
	resolve func(*http.Request, Options) Options
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                 { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }
func WithGraphiQL(enable bool) Option    { return func(o *Options) { o.GraphiQL = enable } }
func WithRootValue(v any) Option         { return func(o *Options) { o.RootValue = v } }
func WithCORS(origins ...string) Option {
	return func(o *Options) { o.CORS.AllowedOrigins = origins }
}
func WithBodyDecoder(d BodyDecoder) Option { return func(o *Options) { o.DecodeBody = d } }
func WithGraphiQLRenderer(r GraphiQLRenderer) Option {
	return func(o *Options) { o.RenderGraphiQL = r }
}

// WithOptionsFunc recomputes options per request, starting from the options
// built by the other With calls.
func WithOptionsFunc(fn func(*http.Request, Options) Options) Option {
	return func(o *Options) { o.resolve = fn }
}

// CORSOptions holds simple CORS settings.
type CORSOptions struct {
	AllowedOrigins []string
}

// New creates a GraphQL HTTP handler over the given engine. A nil engine is
// a deployment error and is rejected here, before any request is served.
func New(eng engine.Engine, opts ...Option) (*Handler, error) {
	if eng == nil {
		return nil, errors.New("server: engine is required")
	}
	op := Options{Timeout: 10 * time.Second, GraphiQL: true}
	for _, f := range opts {
		f(&op)
	}
	return &Handler{eng: eng, opt: op}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	opt := h.opt
	if opt.resolve != nil {
		opt = opt.resolve(r, opt)
	}

	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opt.Timeout)
		defer cancel()
	}
	ctx, _ = reqid.NewContext(ctx)

	status := http.StatusOK
	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r})
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: status, Duration: time.Since(start)})
	}()

	if r.Method == http.MethodOptions && len(opt.CORS.AllowedOrigins) > 0 {
		setCORSHeaders(w, r, opt.CORS)
		status = http.StatusNoContent
		w.WriteHeader(status)
		return
	}

	// Method gate runs before the body is read.
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		status = writeRequestError(w, h.eng, &RequestError{
			Status:  http.StatusMethodNotAllowed,
			Message: "GraphQL only supports GET and POST requests.",
			allow:   "GET, POST",
		}, opt.Pretty)
		return
	}

	if len(opt.CORS.AllowedOrigins) > 0 {
		setCORSHeaders(w, r, opt.CORS)
	}

	decode := opt.DecodeBody
	if decode == nil {
		decode = defaultBodyDecoder(opt.MaxBodyBytes)
	}
	body, err := decode(r)
	if err != nil {
		status = writeRequestError(w, h.eng, asRequestError(err), opt.Pretty)
		return
	}

	params, perr := extractParams(r.URL.Query(), body)
	if perr != nil {
		status = writeRequestError(w, h.eng, perr, opt.Pretty)
		return
	}

	status = h.respond(ctx, w, r, opt, params)
}

// respond runs the post-extraction pipeline: missing-query short circuit,
// parse, validate, operation-kind gate, execute, and the final write. It
// returns the status it wrote.
func (h *Handler) respond(ctx context.Context, w http.ResponseWriter, r *http.Request, opt Options, params RequestParams) int {
	if params.Query == "" {
		if wantsGraphiQL(r, params.Raw, opt.GraphiQL) {
			return writeGraphiQL(w, h.eng, opt, GraphiQLData{})
		}
		return writeRequestError(w, h.eng, &RequestError{
			Status:  http.StatusBadRequest,
			Message: "Must provide query string.",
		}, opt.Pretty)
	}

	doc, err := h.eng.Parse(params.Query)
	if err != nil {
		// Parse failures join the unified error list; the 400 falls out of
		// the absent data key, not a protocol status.
		return h.finishResult(w, r, opt, params, engine.ErrorResult(h.eng.FormatError(err)))
	}

	if errs := h.eng.Validate(doc); len(errs) > 0 {
		return h.finishResult(w, r, opt, params, &engine.Result{Errors: formatAll(h.eng, errs)})
	}

	op := h.eng.IdentifyOperation(doc, params.OperationName)
	opKind := ""
	if op != nil {
		opKind = string(op.Operation)
	}

	// Only read-only operations may run over GET. An unresolvable operation
	// counts as non-query here rather than slipping through.
	if r.Method == http.MethodGet && (op == nil || op.Operation != ast.Query) {
		if wantsGraphiQL(r, params.Raw, opt.GraphiQL) {
			return writeGraphiQL(w, h.eng, opt, GraphiQLData{
				Query:     params.Query,
				Variables: jsonText(params.Variables),
			})
		}
		kind := "non-query"
		if op != nil {
			kind = opKind
		}
		return writeRequestError(w, h.eng, &RequestError{
			Status:  http.StatusMethodNotAllowed,
			Message: fmt.Sprintf("Can only perform a %s operation from a POST request.", kind),
			allow:   "POST",
		}, opt.Pretty)
	}

	gqlStart := time.Now()
	eventbus.Publish(ctx, events.GraphQLStart{
		Query:         params.Query,
		OperationName: params.OperationName,
		OperationType: opKind,
	})
	result := h.executeSafely(ctx, doc, opt, params)
	result.Errors = formatAll(h.eng, result.Errors)
	eventbus.Publish(ctx, events.GraphQLFinish{
		Query:         params.Query,
		OperationName: params.OperationName,
		OperationType: opKind,
		Errors:        result.Errors,
		Duration:      time.Since(gqlStart),
	})

	return h.finishResult(w, r, opt, params, result)
}

// finishResult is the last negotiation point: any result carrying the
// unified error list (parse, validation, or execution outcomes) renders the
// GraphiQL page with full presets for HTML-preferring clients, and the JSON
// envelope otherwise.
func (h *Handler) finishResult(w http.ResponseWriter, r *http.Request, opt Options, params RequestParams, result *engine.Result) int {
	if wantsGraphiQL(r, params.Raw, opt.GraphiQL) {
		return writeGraphiQL(w, h.eng, opt, GraphiQLData{
			Query:     params.Query,
			Variables: jsonText(params.Variables),
			Result:    resultText(result),
		})
	}
	return writeResult(w, result, opt.Pretty)
}

// executeSafely runs the engine's execute step. Returned errors and panics
// are both folded into the unified error list here, at the one boundary
// where engine failures are allowed to surface.
func (h *Handler) executeSafely(ctx context.Context, doc *ast.QueryDocument, opt Options, params RequestParams) (res *engine.Result) {
	defer func() {
		if p := recover(); p != nil {
			res = engine.ErrorResult(h.eng.FormatError(fmt.Errorf("%v", p)))
		}
	}()
	out, err := h.eng.Execute(ctx, engine.Request{
		Document:      doc,
		RootValue:     opt.RootValue,
		Variables:     params.Variables,
		OperationName: params.OperationName,
	})
	if err != nil {
		return engine.ErrorResult(h.eng.FormatError(err))
	}
	if out == nil {
		return engine.ErrorResult(h.eng.FormatError(errors.New("engine returned no result")))
	}
	return out
}

func formatAll(eng engine.Engine, errs gqlerror.List) gqlerror.List {
	if len(errs) == 0 {
		return nil
	}
	out := make(gqlerror.List, len(errs))
	for i, e := range errs {
		out[i] = eng.FormatError(e)
	}
	return out
}

func asRequestError(err error) *RequestError {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr
	}
	return &RequestError{Status: http.StatusBadRequest, Message: err.Error()}
}

// jsonText renders v for a GraphiQL editor pane; nil renders as empty text.
func jsonText(v map[string]any) string {
	if v == nil {
		return ""
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func resultText(res *engine.Result) string {
	var body any
	if res.HasData {
		body = struct {
			Data   any           `json:"data"`
			Errors gqlerror.List `json:"errors,omitempty"`
		}{Data: res.Data, Errors: res.Errors}
	} else {
		body = struct {
			Errors gqlerror.List `json:"errors,omitempty"`
		}{Errors: res.Errors}
	}
	b, _ := json.MarshalIndent(body, "", "  ")
	return string(b)
}

func setCORSHeaders(w http.ResponseWriter, r *http.Request, opts CORSOptions) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}
	allowAny := false
	allowed := false
	for _, o := range opts.AllowedOrigins {
		if o == "*" {
			allowAny = true
			allowed = true
			break
		}
		if o == origin {
			allowed = true
		}
	}
	if !allowed {
		return
	}
	if allowAny {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	}
	if r.Method == http.MethodOptions {
		if hdr := r.Header.Get("Access-Control-Request-Headers"); hdr != "" {
			w.Header().Set("Access-Control-Allow-Headers", hdr)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	}
}
