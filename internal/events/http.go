package events

import (
	"net/http"
	"time"
)

// HTTPStart is emitted when a request reaches the GraphQL endpoint, before
// any parsing. The publishing context carries the request id.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish is emitted once the response has been written.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Duration time.Duration
}
