package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	apperr "campusconnect/pkg/errors"
	"campusconnect/pkg/identity"
	"campusconnect/pkg/logger"
	"campusconnect/pkg/models"
	"campusconnect/pkg/undo"
	"campusconnect/pkg/utils"
)

// RegisterStories registers HTTP handlers for story endpoints.
func RegisterStories(r *mux.Router, d Deps) {
	r.HandleFunc("/stories", d.addStory).Methods(http.MethodPost)
	r.HandleFunc("/stories", d.groupedStories).Methods(http.MethodGet)
	r.HandleFunc("/stories/{author}/active", d.hasActiveStory).Methods(http.MethodGet)
	r.HandleFunc("/stories/{id}", d.deleteStory).Methods(http.MethodDelete)
}

type addStoryRequest struct {
	MediaRef  string           `json:"media_ref"`
	MediaKind models.MediaKind `json:"media_kind"`
}

func (d Deps) addStory(w http.ResponseWriter, r *http.Request) {
	current := identity.Current(r)
	if current == "" {
		writeErr(w, apperr.ErrNoCurrentUser)
		return
	}
	var req addStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	st, err := d.Stories.Add(current, req.MediaRef, req.MediaKind)
	if err != nil && apperr.CodeOf(err) != apperr.CodePersistence {
		writeErr(w, err)
		return
	}
	resp := struct {
		models.Story
		Warning string `json:"warning,omitempty"`
	}{Story: st}
	if err != nil {
		logger.Warn("story_persist_degraded", "id", st.ID)
		resp.Warning = "persistence degraded; story retained in memory"
	}
	_ = utils.JSONWrite(w, http.StatusCreated, resp)
}

func (d Deps) groupedStories(w http.ResponseWriter, r *http.Request) {
	groups := d.Stories.GroupedByAuthor()
	if groups == nil {
		groups = []models.StoryGroup{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Groups []models.StoryGroup `json:"groups"`
	}{Groups: groups})
}

func (d Deps) hasActiveStory(w http.ResponseWriter, r *http.Request) {
	author := mux.Vars(r)["author"]
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Author string `json:"author"`
		Active bool   `json:"active"`
	}{Author: author, Active: d.Stories.HasActiveStory(author)})
}

func (d Deps) deleteStory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	st, ok := d.Stories.Story(id)
	if !ok {
		// absent ids are a silent no-op per the delete contract
		w.WriteHeader(http.StatusNoContent)
		return
	}
	err := d.Undo.Request(undo.KindStory, id, st, func() {
		if derr := d.Stories.Delete(id); derr != nil {
			logger.Error("story_delete_commit_failed", "id", id, "error", derr)
		}
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	deadline, _ := d.Undo.Deadline(undo.KindStory)
	_ = utils.JSONWrite(w, http.StatusAccepted, struct {
		ID            string `json:"id"`
		GraceDeadline int64  `json:"grace_deadline"`
	}{ID: id, GraceDeadline: deadline.UnixNano()})
}
