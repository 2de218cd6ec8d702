package server

import (
	"encoding/json"
	"net/http"

	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/musicglue/express-graphql/engine"
)

// writeResult maps an execution result onto the wire: the data key decides
// the status (200 when present, even alongside errors; 400 when the result
// only carries errors).
func writeResult(w http.ResponseWriter, res *engine.Result, pretty bool) int {
	if res.HasData {
		body := struct {
			Data   any           `json:"data"`
			Errors gqlerror.List `json:"errors,omitempty"`
		}{Data: res.Data, Errors: res.Errors}
		return writeJSON(w, http.StatusOK, body, pretty)
	}
	return writeErrors(w, http.StatusBadRequest, res.Errors, pretty)
}

// writeErrors writes a data-less {errors} envelope.
func writeErrors(w http.ResponseWriter, status int, errs gqlerror.List, pretty bool) int {
	body := struct {
		Errors gqlerror.List `json:"errors,omitempty"`
	}{Errors: errs}
	return writeJSON(w, status, body, pretty)
}

// writeRequestError surfaces a protocol failure as its own status with a
// single formatted error, setting Allow on method rejections.
func writeRequestError(w http.ResponseWriter, eng engine.Engine, reqErr *RequestError, pretty bool) int {
	status := reqErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if reqErr.allow != "" {
		w.Header().Set("Allow", reqErr.allow)
	}
	return writeErrors(w, status, gqlerror.List{eng.FormatError(reqErr)}, pretty)
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) int {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
	return status
}
