package handlers

import (
	"net/http"
	"time"

	"campusconnect/pkg/convo"
	apperr "campusconnect/pkg/errors"
	"campusconnect/pkg/identity"
	"campusconnect/pkg/stories"
	"campusconnect/pkg/undo"
	"campusconnect/pkg/utils"
)

// Deps carries the injected store handles; handlers never reach for
// ambient globals.
type Deps struct {
	Convo   *convo.Store
	Stories *stories.Store
	Undo    *undo.Controller
	Roster  *identity.Roster
	// LongPress is the configured sustained-press threshold published to
	// UI surfaces via the undo config endpoint.
	LongPress time.Duration
}

// writeErr maps the error taxonomy onto HTTP statuses.
func writeErr(w http.ResponseWriter, err error) {
	switch apperr.CodeOf(err) {
	case apperr.CodeInvalidInput:
		utils.JSONError(w, http.StatusBadRequest, err.Error())
	case apperr.CodeNotFound:
		utils.JSONError(w, http.StatusNotFound, err.Error())
	case apperr.CodeFailedPrecondition:
		utils.JSONError(w, http.StatusConflict, err.Error())
	default:
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
	}
}
