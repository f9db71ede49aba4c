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

// RegisterMessages registers HTTP handlers for conversation endpoints.
func RegisterMessages(r *mux.Router, d Deps) {
	r.HandleFunc("/messages", d.sendMessage).Methods(http.MethodPost)
	r.HandleFunc("/roster", d.roster).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{peer}/messages", d.listMessages).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{peer}/messages/{id}", d.deleteMessage).Methods(http.MethodDelete)
	r.HandleFunc("/conversations/{peer}", d.deleteConversation).Methods(http.MethodDelete)
}

type sendRequest struct {
	Recipient string `json:"recipient"`
	Text      string `json:"text"`
}

func (d Deps) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	current := identity.Current(r)
	m, err := d.Convo.Send(r.Context(), current, req.Recipient, req.Text)
	if err != nil && apperr.CodeOf(err) != apperr.CodePersistence {
		writeErr(w, err)
		return
	}
	resp := struct {
		models.Message
		Warning string `json:"warning,omitempty"`
	}{Message: m}
	if err != nil {
		// message is stored in memory; the logical operation succeeded,
		// so report it created but flag the degraded mirror
		logger.Warn("send_persist_degraded", "id", m.ID)
		resp.Warning = "persistence degraded; message retained in memory"
	}
	d.Roster.Add(current)
	_ = utils.JSONWrite(w, http.StatusCreated, resp)
}

func (d Deps) roster(w http.ResponseWriter, r *http.Request) {
	current := identity.Current(r)
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Participants []string `json:"participants"`
	}{Participants: d.Roster.Participants(current)})
}

func (d Deps) listMessages(w http.ResponseWriter, r *http.Request) {
	current := identity.Current(r)
	if current == "" {
		writeErr(w, apperr.ErrNoCurrentUser)
		return
	}
	peer := mux.Vars(r)["peer"]
	msgs := d.Convo.Messages(current, peer)
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Peer      string           `json:"peer"`
		Messages  []models.Message `json:"messages"`
		Unread    int              `json:"unread"`
		Composing bool             `json:"composing"`
	}{
		Peer:      peer,
		Messages:  msgs,
		Unread:    d.Convo.UnreadCount(current, peer),
		Composing: d.Convo.Composing(),
	})
}

// deleteMessage starts the two-phase delete: the message disappears from
// listings immediately and commits after the grace window unless undone.
func (d Deps) deleteMessage(w http.ResponseWriter, r *http.Request) {
	current := identity.Current(r)
	if current == "" {
		writeErr(w, apperr.ErrNoCurrentUser)
		return
	}
	vars := mux.Vars(r)
	peer, id := vars["peer"], vars["id"]

	m, ok := d.Convo.Message(current, peer, id)
	if !ok {
		// absent ids are a silent no-op per the delete contract
		w.WriteHeader(http.StatusNoContent)
		return
	}
	err := d.Undo.Request(undo.KindMessage, id, m, func() {
		if derr := d.Convo.DeleteMessage(current, peer, id); derr != nil {
			logger.Error("message_delete_commit_failed", "id", id, "error", derr)
		}
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	deadline, _ := d.Undo.Deadline(undo.KindMessage)
	_ = utils.JSONWrite(w, http.StatusAccepted, struct {
		ID            string `json:"id"`
		GraceDeadline int64  `json:"grace_deadline"`
	}{ID: id, GraceDeadline: deadline.UnixNano()})
}

func (d Deps) deleteConversation(w http.ResponseWriter, r *http.Request) {
	current := identity.Current(r)
	if current == "" {
		writeErr(w, apperr.ErrNoCurrentUser)
		return
	}
	peer := mux.Vars(r)["peer"]
	key := models.ConversationKey(current, peer)

	snapshot := d.Convo.Messages(current, peer)
	if len(snapshot) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	err := d.Undo.Request(undo.KindConversation, key, snapshot, func() {
		if derr := d.Convo.DeleteConversation(current, peer); derr != nil {
			logger.Error("conversation_delete_commit_failed", "conv", key, "error", derr)
		}
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	deadline, _ := d.Undo.Deadline(undo.KindConversation)
	_ = utils.JSONWrite(w, http.StatusAccepted, struct {
		Peer          string `json:"peer"`
		GraceDeadline int64  `json:"grace_deadline"`
	}{Peer: peer, GraceDeadline: deadline.UnixNano()})
}
