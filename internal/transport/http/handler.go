package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"thingmadurinn/internal/domain"
	"thingmadurinn/internal/quiz"
)

// Handler exposes the quiz over REST plus a websocket leaderboard feed.
type Handler struct {
	quiz     *quiz.Service
	scores   *quiz.ScoreService
	hub      *quiz.ScoreHub
	upgrader websocket.Upgrader
}

func NewHandler(q *quiz.Service, scores *quiz.ScoreService, hub *quiz.ScoreHub) *Handler {
	return &Handler{
		quiz:   q,
		scores: scores,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Routes builds the router. allowedOrigins enables CORS for a browser
// frontend served elsewhere; empty means same-origin only.
func (h *Handler) Routes(allowedOrigins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(30 * time.Second))
		api.Get("/question", h.getQuestion)
		api.Post("/guess", h.postGuess)
		api.Get("/highscores", h.getHighScores)
		api.Post("/highscores", h.postHighScore)
	})

	// No timeout middleware here: feed connections are long-lived.
	r.Get("/ws/highscores", h.serveScoreFeed)
	return r
}

func (h *Handler) getQuestion(w http.ResponseWriter, r *http.Request) {
	mode, difficulty := scopeParams(r)
	question, err := h.quiz.BuildQuestion(r.Context(), mode, difficulty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

func (h *Handler) postGuess(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token  string `json:"token"`
		Answer any    `json:"answer"`
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidRequest)
		return
	}

	answer, ok := answerString(req.Answer)
	if !ok || req.Token == "" {
		// Reject before any token decoding happens.
		writeError(w, domain.ErrInvalidRequest)
		return
	}

	verdict, err := h.quiz.VerifyGuess(req.Token, answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, verdict)
}

func (h *Handler) getHighScores(w http.ResponseWriter, r *http.Request) {
	mode, difficulty := scopeParams(r)
	board, err := h.scores.Top(r.Context(), mode, difficulty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, boardPayload(mode, difficulty, board))
}

func (h *Handler) postHighScore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Initials   string `json:"initials"`
		Score      any    `json:"score"`
		Mode       string `json:"gameMode"`
		Difficulty any    `json:"difficulty"`
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidRequest)
		return
	}

	score, ok := intValue(req.Score)
	if !ok {
		writeError(w, domain.ErrInvalidRequest)
		return
	}
	mode := domain.ParseGameMode(req.Mode)
	difficulty := domain.DefaultDifficulty
	if d, ok := intValue(req.Difficulty); ok {
		difficulty = domain.ClampDifficulty(d)
	}

	board, err := h.scores.Submit(r.Context(), req.Initials, score, mode, difficulty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, boardPayload(mode, difficulty, board))
}

func scopeParams(r *http.Request) (domain.GameMode, int) {
	q := r.URL.Query()
	rawMode := q.Get("mode")
	if rawMode == "" {
		rawMode = q.Get("gameMode")
	}
	return domain.ParseGameMode(rawMode), domain.ParseDifficulty(q.Get("difficulty"))
}

// answerString normalizes the client's answer representation: numeric ids
// and string keys must compare the same way regardless of JSON type.
func answerString(v any) (string, bool) {
	switch a := v.(type) {
	case string:
		return a, a != ""
	case json.Number:
		return a.String(), true
	default:
		return "", false
	}
}

func intValue(v any) (int, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return int(i), true
}

type scoreEntry struct {
	Initials string `json:"initials"`
	Score    int    `json:"score"`
}

type boardResponse struct {
	GameMode   domain.GameMode `json:"gameMode"`
	Difficulty int             `json:"difficulty"`
	Scores     []scoreEntry    `json:"scores"`
}

func boardPayload(mode domain.GameMode, difficulty int, board []domain.HighScore) boardResponse {
	scores := make([]scoreEntry, 0, len(board))
	for _, e := range board {
		scores = append(scores, scoreEntry{Initials: e.Initials, Score: e.Score})
	}
	return boardResponse{GameMode: mode, Difficulty: difficulty, Scores: scores}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidToken):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, domain.ErrNoData), errors.Is(err, domain.ErrNoAffiliation):
		status = http.StatusServiceUnavailable
		msg = err.Error()
	default:
		log.Printf("request failed: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
