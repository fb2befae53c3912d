// internal/httpserver/routes_invites.go
//
// HTTP routes for duel invitations. Mounted under /games/invites:
//   - POST /games/invites              → invite another player
//   - GET  /games/invites/me           → open invites addressed to the caller
//   - POST /games/invites/{id}/respond → accept (creates the game) or decline

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// mountInvites registers the /invites routes on r.
func (s *Server) mountInvites(r chi.Router) {
	r.Route("/invites", func(r chi.Router) {
		r.Post("/", s.handleCreateInvite)
		r.Get("/me", s.handleMyInvites)
		r.Post("/{id}/respond", s.handleRespondInvite)
	})
}

type createInviteReq struct {
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
}

func (s *Server) handleCreateInvite(w http.ResponseWriter, r *http.Request) {
	var req createInviteReq
	if !decodeBody(w, r, &req) {
		return
	}
	inv, err := s.svc.CreateInvite(r.Context(), currentUser(r), req.ReceiverID, req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newInviteView(inv, s.svc.Now()))
}

func (s *Server) handleMyInvites(w http.ResponseWriter, r *http.Request) {
	invs, err := s.svc.ListInvites(r.Context(), currentUser(r), queryInt(r, "limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	now := s.svc.Now()
	out := make([]inviteView, 0, len(invs))
	for _, inv := range invs {
		out = append(out, newInviteView(inv, now))
	}
	writeJSON(w, http.StatusOK, out)
}

type respondInviteReq struct {
	Accept *bool `json:"accept"`
}

type respondInviteRes struct {
	Invite inviteView `json:"invite"`
	Game   *gameView  `json:"game,omitempty"`
}

func (s *Server) handleRespondInvite(w http.ResponseWriter, r *http.Request) {
	var req respondInviteReq
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Accept == nil {
		writeJSONError(w, http.StatusBadRequest, "bad_json", `"accept" is required`)
		return
	}
	me := currentUser(r)
	inv, g, err := s.svc.RespondInvite(r.Context(), me, chi.URLParam(r, "id"), *req.Accept)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res := respondInviteRes{Invite: newInviteView(inv, s.svc.Now())}
	if g != nil {
		v := newGameView(g, me)
		res.Game = &v
	}
	writeJSON(w, http.StatusOK, res)
}
