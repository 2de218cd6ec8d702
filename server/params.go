package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
)

// RequestParams is the merged parameter set of one request. An absent query
// or operationName is the empty string; absent variables are nil. Raw is a
// key-presence test: raw=false in either source still counts as raw.
type RequestParams struct {
	Query         string
	Variables     map[string]any
	OperationName string
	Raw           bool
}

// BodyDecoder turns a request body into a parameter mapping. Implementations
// may return a *RequestError to choose the response status; any other error
// is reported as a 400.
type BodyDecoder func(*http.Request) (map[string]any, error)

// RequestError is a request-shape or policy violation carrying the HTTP
// status to respond with.
type RequestError struct {
	Status  int
	Message string

	allow string
}

func (e *RequestError) Error() string { return e.Message }

// extractParams merges URL query parameters and decoded body fields. URL
// values win per key. Pure; no side effects.
func extractParams(urlv url.Values, body map[string]any) (RequestParams, *RequestError) {
	p := RequestParams{
		Query:         stringParam(urlv, body, "query"),
		OperationName: stringParam(urlv, body, "operationName"),
	}

	switch v := anyParam(urlv, body, "variables").(type) {
	case nil:
	case string:
		var m map[string]any
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return RequestParams{}, &RequestError{Status: http.StatusBadRequest, Message: "Variables are invalid JSON."}
		}
		p.Variables = m
	case map[string]any:
		p.Variables = v
	}

	_, inBody := body["raw"]
	p.Raw = urlv.Has("raw") || inBody
	return p, nil
}

// anyParam returns the first present value for key, URL source first. A key
// present with an empty value is still present.
func anyParam(urlv url.Values, body map[string]any, key string) any {
	if urlv.Has(key) {
		return urlv.Get(key)
	}
	if v, ok := body[key]; ok {
		return v
	}
	return nil
}

// stringParam is anyParam restricted to strings; non-string values are
// treated as absent.
func stringParam(urlv url.Values, body map[string]any, key string) string {
	if s, ok := anyParam(urlv, body, key).(string); ok {
		return s
	}
	return ""
}

// defaultBodyDecoder decodes application/json, application/graphql and
// form-encoded POST bodies. Unknown media types decode to an empty mapping;
// bodies over maxBytes fail with 413.
func defaultBodyDecoder(maxBytes int64) BodyDecoder {
	return func(r *http.Request) (map[string]any, error) {
		if r.Method != http.MethodPost || r.Body == nil {
			return nil, nil
		}

		reader := io.Reader(r.Body)
		if maxBytes > 0 {
			reader = io.LimitReader(r.Body, maxBytes+1)
		}
		body, err := io.ReadAll(reader)
		if err != nil {
			return nil, &RequestError{Status: http.StatusBadRequest, Message: "Failed to read request body."}
		}
		defer r.Body.Close()
		if maxBytes > 0 && int64(len(body)) > maxBytes {
			return nil, &RequestError{Status: http.StatusRequestEntityTooLarge, Message: "Request body too large."}
		}

		mt := ""
		if ct := r.Header.Get("Content-Type"); ct != "" {
			mt, _, _ = mime.ParseMediaType(ct)
		}

		switch mt {
		case "", "application/json":
			if len(body) == 0 {
				return map[string]any{}, nil
			}
			var v any
			if err := json.Unmarshal(body, &v); err != nil {
				return nil, &RequestError{Status: http.StatusBadRequest, Message: "POST body sent invalid JSON."}
			}
			if m, ok := v.(map[string]any); ok {
				return m, nil
			}
			return map[string]any{}, nil
		case "application/x-www-form-urlencoded":
			vals, err := url.ParseQuery(string(body))
			if err != nil {
				return nil, &RequestError{Status: http.StatusBadRequest, Message: "POST body sent invalid form data."}
			}
			m := make(map[string]any, len(vals))
			for k := range vals {
				m[k] = vals.Get(k)
			}
			return m, nil
		case "application/graphql":
			return map[string]any{"query": string(body)}, nil
		default:
			return map[string]any{}, nil
		}
	}
}
