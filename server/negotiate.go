package server

import (
	"mime"
	"net/http"
	"strconv"
	"strings"
)

// mediaRange is one parsed entry of an Accept header.
type mediaRange struct {
	typ string
	sub string
	q   float64
}

func parseAccept(header string) []mediaRange {
	var ranges []mediaRange
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		mt, params, err := mime.ParseMediaType(part)
		if err != nil {
			continue
		}
		typ, sub, ok := strings.Cut(mt, "/")
		if !ok {
			continue
		}
		q := 1.0
		if qs, ok := params["q"]; ok {
			parsed, err := strconv.ParseFloat(qs, 64)
			if err != nil || parsed < 0 || parsed > 1 {
				continue
			}
			q = parsed
		}
		ranges = append(ranges, mediaRange{typ: typ, sub: sub, q: q})
	}
	return ranges
}

// quality returns the q-value the client assigned to offer, taking the most
// specific matching range (exact beats type/* beats */*). Zero means not
// acceptable.
func quality(ranges []mediaRange, offer string) float64 {
	typ, sub, _ := strings.Cut(offer, "/")
	q, specificity := 0.0, -1
	for _, mr := range ranges {
		var spec int
		switch {
		case mr.typ == typ && mr.sub == sub:
			spec = 2
		case mr.typ == typ && mr.sub == "*":
			spec = 1
		case mr.typ == "*" && mr.sub == "*":
			spec = 0
		default:
			continue
		}
		if spec > specificity {
			q, specificity = mr.q, spec
		}
	}
	return q
}

// negotiate picks the offer the client prefers. Ties go to the earliest
// offer, and an empty Accept header accepts the first offer.
func negotiate(header string, offers ...string) string {
	ranges := parseAccept(header)
	if len(ranges) == 0 {
		return offers[0]
	}
	best, bestQ := "", 0.0
	for _, offer := range offers {
		if q := quality(ranges, offer); q > bestQ {
			best, bestQ = offer, q
		}
	}
	return best
}

// wantsGraphiQL decides whether to answer with the GraphiQL page instead of
// JSON. Never when raw was requested or GraphiQL is disabled; otherwise only
// when the client weighs text/html above application/json.
func wantsGraphiQL(r *http.Request, raw, enabled bool) bool {
	if raw || !enabled {
		return false
	}
	return negotiate(r.Header.Get("Accept"), "application/json", "text/html") == "text/html"
}
