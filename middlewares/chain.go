package middlewares

import "net/http"

// Middleware is one stage of the request pipeline.
type Middleware func(http.Handler) http.Handler

// Chain wraps h so that stages run in the order given: the first stage is the
// outermost one and sees the request first.
func Chain(h http.Handler, stages ...Middleware) http.Handler {
	for i := len(stages) - 1; i >= 0; i-- {
		if stages[i] == nil {
			continue
		}
		h = stages[i](h)
	}
	return h
}

// Outcome is the verdict of a guard stage: either continue to the next stage
// or stop and answer with Status and the error tag.
type Outcome struct {
	Continue bool
	Status   int
	Tag      string
}

// Proceed lets the request through.
var Proceed = Outcome{Continue: true}

// Reject stops the request with status and tag.
func Reject(status int, tag string) Outcome {
	return Outcome{Status: status, Tag: tag}
}
