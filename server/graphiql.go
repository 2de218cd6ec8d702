package server

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/musicglue/express-graphql/engine"
)

// GraphiQLData carries the presets injected into the GraphiQL page. All
// three fields are editor text: Variables and Result hold JSON source, not
// decoded values. Empty fields leave the corresponding editor blank.
type GraphiQLData struct {
	Query     string
	Variables string
	Result    string
}

// GraphiQLRenderer produces the interactive page markup for the presets.
type GraphiQLRenderer func(GraphiQLData) ([]byte, error)

var graphiqlTmpl = template.Must(template.New("graphiql").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8" />
<title>GraphiQL</title>
<meta name="viewport" content="width=device-width, initial-scale=1" />
<style>
  body { height: 100%; margin: 0; width: 100%; overflow: hidden; }
  #graphiql { height: 100vh; }
</style>
<link rel="stylesheet" href="https://unpkg.com/graphiql@3/graphiql.min.css" />
<script crossorigin src="https://unpkg.com/react@18/umd/react.production.min.js"></script>
<script crossorigin src="https://unpkg.com/react-dom@18/umd/react-dom.production.min.js"></script>
<script crossorigin src="https://unpkg.com/graphiql@3/graphiql.min.js"></script>
</head>
<body>
<div id="graphiql">Loading…</div>
<script>
  const fetcher = GraphiQL.createFetcher({
    url: window.location.pathname + window.location.search,
  });
  const root = ReactDOM.createRoot(document.getElementById('graphiql'));
  root.render(
    React.createElement(GraphiQL, {
      fetcher: fetcher,
      defaultEditorToolsVisibility: true,
      query: {{.Query}},
      variables: {{.Variables}},
      response: {{.Result}},
    }),
  );
</script>
</body>
</html>
`))

// defaultGraphiQL renders the built-in page. html/template quotes the preset
// strings in the script context, so presets cannot break out of the page.
func defaultGraphiQL(data GraphiQLData) ([]byte, error) {
	var buf bytes.Buffer
	if err := graphiqlTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeGraphiQL renders the page through the configured renderer and serves
// it as HTML. A renderer failure answers with the same JSON error envelope
// as every other failure path.
func writeGraphiQL(w http.ResponseWriter, eng engine.Engine, opt Options, data GraphiQLData) int {
	render := opt.RenderGraphiQL
	if render == nil {
		render = defaultGraphiQL
	}
	page, err := render(data)
	if err != nil {
		return writeErrors(w, http.StatusInternalServerError, gqlerror.List{eng.FormatError(err)}, opt.Pretty)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
	return http.StatusOK
}
