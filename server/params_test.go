package server

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestExtractParamsPrecedence(t *testing.T) {
	urlv := url.Values{"query": {"{ a }"}, "operationName": {"FromURL"}}
	body := map[string]any{"query": "{ b }", "operationName": "FromBody", "variables": map[string]any{"x": 1.0}}

	p, perr := extractParams(urlv, body)
	require.Nil(t, perr)

	want := RequestParams{
		Query:         "{ a }",
		OperationName: "FromURL",
		Variables:     map[string]any{"x": 1.0},
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractParamsStringVariables(t *testing.T) {
	p, perr := extractParams(url.Values{}, map[string]any{"variables": `{"x":"y"}`})
	require.Nil(t, perr)
	require.Equal(t, map[string]any{"x": "y"}, p.Variables)
}

func TestExtractParamsInvalidVariables(t *testing.T) {
	for _, v := range []string{"{oops", "", "[1,2]"} {
		_, perr := extractParams(url.Values{"variables": {v}}, nil)
		require.NotNil(t, perr, "variables %q", v)
		require.Equal(t, http.StatusBadRequest, perr.Status)
	}
}

func TestExtractParamsRawPresence(t *testing.T) {
	p, _ := extractParams(url.Values{"raw": {""}}, nil)
	require.True(t, p.Raw, "raw present in URL with empty value")

	p, _ = extractParams(url.Values{}, map[string]any{"raw": false})
	require.True(t, p.Raw, "raw=false in body still counts as present")

	p, _ = extractParams(url.Values{}, map[string]any{})
	require.False(t, p.Raw)
}

func TestExtractParamsNonStringIgnored(t *testing.T) {
	p, perr := extractParams(url.Values{}, map[string]any{"query": 42, "operationName": true})
	require.Nil(t, perr)
	require.Empty(t, p.Query)
	require.Empty(t, p.OperationName)
}

func TestDefaultBodyDecoderUnknownMediaType(t *testing.T) {
	decode := defaultBodyDecoder(0)
	r, _ := http.NewRequest("POST", "/", strings.NewReader("ignored"))
	r.Header.Set("Content-Type", "text/plain")
	m, err := decode(r)
	require.NoError(t, err)
	require.Empty(t, m)
}

func TestDefaultBodyDecoderNonObjectJSON(t *testing.T) {
	decode := defaultBodyDecoder(0)
	r, _ := http.NewRequest("POST", "/", strings.NewReader(`[1,2,3]`))
	r.Header.Set("Content-Type", "application/json")
	m, err := decode(r)
	require.NoError(t, err)
	require.Empty(t, m)
}

func TestDefaultBodyDecoderSkipsGET(t *testing.T) {
	decode := defaultBodyDecoder(0)
	r, _ := http.NewRequest("GET", "/", nil)
	m, err := decode(r)
	require.NoError(t, err)
	require.Nil(t, m)
}

func TestDefaultBodyDecoderCharsetParam(t *testing.T) {
	decode := defaultBodyDecoder(0)
	r, _ := http.NewRequest("POST", "/", strings.NewReader(`{"query":"{ hello }"}`))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	m, err := decode(r)
	require.NoError(t, err)
	require.Equal(t, "{ hello }", m["query"])
}
