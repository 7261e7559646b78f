package middlewares

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestChainRunsStagesInOrder(t *testing.T) {
	var order []string
	stage := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), stage("first"), nil, stage("second"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"first", "second", "handler"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("Expected %v, got %v", want, order)
	}
}
