package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"campusconnect/pkg/api/handlers"
	"campusconnect/pkg/logger"
	"campusconnect/pkg/store"
)

// Handler builds the HTTP surface consumed by the browser UI. The core
// itself is a library; everything here is glue.
func Handler(d handlers.Deps) http.Handler {
	r := mux.NewRouter()
	r.Use(requestLog)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !store.Ready() {
			// degraded: memory-only mode, still serving
			_, _ = w.Write([]byte(`{"status":"degraded"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	handlers.RegisterMessages(v1, d)
	handlers.RegisterStories(v1, d)
	handlers.RegisterUndo(v1, d)
	return r
}

func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.LogRequest(r)
		next.ServeHTTP(w, r)
	})
}
