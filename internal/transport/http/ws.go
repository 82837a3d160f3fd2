package http

import (
	"log"
	"net/http"
)

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// serveScoreFeed upgrades the request and streams the leaderboard for one
// (mode, difficulty) scope: an initial snapshot, then a message whenever a
// new score lands in that scope.
func (h *Handler) serveScoreFeed(w http.ResponseWriter, r *http.Request) {
	mode, difficulty := scopeParams(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	board, err := h.scores.Top(r.Context(), mode, difficulty)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: map[string]string{"message": "highscores unavailable"}})
		return
	}

	updates, cancel := h.hub.Subscribe(mode, difficulty)
	defer cancel()

	// Read pump: the client sends nothing meaningful, but reading is how
	// we notice the connection going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(outboundMessage{Type: "highscores", Payload: boardPayload(mode, difficulty, board)}); err != nil {
		return
	}

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage{Type: "highscores", Payload: boardPayload(mode, difficulty, update)}); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
