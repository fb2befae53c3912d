// internal/httpserver/routes_games.go
//
// HTTP routes for duels. Mounted under /games:
//   - POST /games                   → challenge an opponent with a first word
//   - GET  /games                   → caller's games, newest first
//   - GET  /games/word-options      → random dictionary words (?count=N)
//   - GET  /games/{id}              → game snapshot (secret hidden from the guesser)
//   - POST /games/{id}/set-word     → word-setter chooses the round word
//   - POST /games/{id}/guess        → guesser submits a guess
//   - POST /games/{id}/abandon      → either player ends the duel

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/worduel/internal/game"
)

// mountGames registers the /games routes on r.
func (s *Server) mountGames(r chi.Router) {
	r.Post("/", s.handleCreateGame)
	r.Get("/", s.handleListGames)
	r.Get("/word-options", s.handleWordOptions)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetGame)
		r.Post("/set-word", s.handleSetWord)
		r.Post("/guess", s.handleGuess)
		r.Post("/abandon", s.handleAbandon)
	})
}

type createGameReq struct {
	TargetWord  string `json:"targetWord"`
	OpponentID  string `json:"opponentId"`
	TotalRounds int    `json:"totalRounds"` // 0 = server default
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameReq
	if !decodeBody(w, r, &req) {
		return
	}
	me := currentUser(r)
	g, err := s.svc.CreateGame(r.Context(), me, req.OpponentID, req.TargetWord, req.TotalRounds)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGameView(g, me))
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	gs, err := s.svc.ListGames(r.Context(), me, queryInt(r, "limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGameViews(gs, me))
}

func (s *Server) handleWordOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"words": s.svc.WordOptions(queryInt(r, "count")),
	})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	g, err := s.svc.GetGame(r.Context(), me, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGameView(g, me))
}

type setWordReq struct {
	Word string `json:"word"`
}

func (s *Server) handleSetWord(w http.ResponseWriter, r *http.Request) {
	var req setWordReq
	if !decodeBody(w, r, &req) {
		return
	}
	me := currentUser(r)
	g, err := s.svc.SetRoundWord(r.Context(), me, chi.URLParam(r, "id"), req.Word)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGameView(g, me))
}

type guessReq struct {
	Guess string `json:"guess"`
}

type guessRes struct {
	Feedback      []game.LetterFeedback `json:"feedback"`
	IsCorrect     bool                  `json:"isCorrect"`
	RoundComplete bool                  `json:"roundComplete"`
	PointsAwarded int                   `json:"pointsAwarded"`
	Game          gameView              `json:"game"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if !decodeBody(w, r, &req) {
		return
	}
	me := currentUser(r)
	res, g, err := s.svc.SubmitGuess(r.Context(), me, chi.URLParam(r, "id"), req.Guess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, guessRes{
		Feedback:      res.Feedback,
		IsCorrect:     res.IsCorrect,
		RoundComplete: res.RoundComplete,
		PointsAwarded: res.PointsAwarded,
		Game:          newGameView(g, me),
	})
}

func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	g, err := s.svc.Abandon(r.Context(), me, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGameView(g, me))
}

// ------------------------------- helpers -----------------------------------

// decodeBody parses a JSON request body into v, answering 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "bad_json", err.Error())
		return false
	}
	return true
}

// queryInt reads a non-negative integer query parameter; anything else is 0.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
