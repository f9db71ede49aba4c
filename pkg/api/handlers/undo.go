package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"campusconnect/pkg/undo"
	"campusconnect/pkg/utils"
)

// RegisterUndo registers the undo endpoints shared by every surface.
// The config route must precede the {kind} routes.
func RegisterUndo(r *mux.Router, d Deps) {
	r.HandleFunc("/undo/config", d.undoConfig).Methods(http.MethodGet)
	r.HandleFunc("/undo/{kind}", d.undoPending).Methods(http.MethodPost)
	r.HandleFunc("/undo/{kind}", d.pendingStatus).Methods(http.MethodGet)
}

// undoConfig publishes the delete choreography timings so surfaces use
// the configured values instead of hardcoding their own.
func (d Deps) undoConfig(w http.ResponseWriter, _ *http.Request) {
	long := d.LongPress
	if long <= 0 {
		long = undo.DefaultPressThreshold
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		GraceMS     int64 `json:"grace_ms"`
		LongPressMS int64 `json:"long_press_ms"`
	}{
		GraceMS:     d.Undo.Grace().Milliseconds(),
		LongPressMS: long.Milliseconds(),
	})
}

// undoPending restores the pending deletion for a kind. Restoring when
// nothing is pending (or after commit) reports restored=false rather
// than failing.
func (d Deps) undoPending(w http.ResponseWriter, r *http.Request) {
	kind := undo.Kind(mux.Vars(r)["kind"])
	_, restored := d.Undo.Undo(kind)
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Kind     string `json:"kind"`
		Restored bool   `json:"restored"`
	}{Kind: string(kind), Restored: restored})
}

func (d Deps) pendingStatus(w http.ResponseWriter, r *http.Request) {
	kind := undo.Kind(mux.Vars(r)["kind"])
	id, pending := d.Undo.Pending(kind)
	resp := struct {
		Kind          string `json:"kind"`
		Pending       bool   `json:"pending"`
		ID            string `json:"id,omitempty"`
		GraceDeadline int64  `json:"grace_deadline,omitempty"`
	}{Kind: string(kind), Pending: pending, ID: id}
	if deadline, ok := d.Undo.Deadline(kind); ok {
		resp.GraceDeadline = deadline.UnixNano()
	}
	_ = utils.JSONWrite(w, http.StatusOK, resp)
}
