// Package events defines the notifications published around the request
// lifecycle. Subscribers (tracing, logging) hang off the eventbus; the
// request path never depends on them.
package events

import (
	"net/http"
	"time"

	"github.com/vektah/gqlparser/v2/gqlerror"
)

// HTTPStart is emitted when a request reaches the handler.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish is emitted after the response has been written.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Duration time.Duration
}

// GraphQLStart is emitted before the engine executes an operation.
type GraphQLStart struct {
	Query         string
	OperationName string
	OperationType string
}

// GraphQLFinish is emitted after execution, with the formatted errors that
// will go on the wire.
type GraphQLFinish struct {
	Query         string
	OperationName string
	OperationType string
	Errors        gqlerror.List
	Duration      time.Duration
}
