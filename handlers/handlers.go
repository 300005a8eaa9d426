package handlers

import (
	"net/http"

	"github.com/greengalaxy/vr-gateway/utils"
)

// NotFoundHandler returns the JSON 404 used for unknown routes
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "No route for "+r.Method+" "+r.URL.Path)
	}
}

// MethodNotAllowedHandler returns the JSON 405 used for known routes with the wrong method
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, "Method "+r.Method+" not allowed", nil)
	}
}
