package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lordjumper/flourish/internal/economy"
)

// recordView is the JSON shape returned for a user record.
type recordView struct {
	UserID    string     `json:"user_id"`
	Balance   int64      `json:"balance"`
	Inventory []lineView `json:"inventory"`
}

type lineView struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Acquired int64  `json:"acquired"`
}

// Protected handlers
func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(claimsKey).(*Claims)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"user_id":  claims.UserID,
		"username": claims.Username,
	})
}

func (a *API) handleUserRecord(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["user_id"]
	if userID == "" {
		http.Error(w, "invalid user_id", http.StatusBadRequest)
		return
	}

	// Lookup, not Read: probing arbitrary ids must not materialize records.
	rec, err := a.store.Lookup(context.Background(), userID)
	if errors.Is(err, economy.ErrRecordNotFound) {
		http.Error(w, "user record not found", http.StatusNotFound)
		return
	}
	if err != nil {
		a.log.Error().Str("user", userID).Err(err).Msg("failed to read user record")
		http.Error(w, "failed to read user record", http.StatusInternalServerError)
		return
	}

	view := recordView{
		UserID:    userID,
		Balance:   rec.Balance,
		Inventory: make([]lineView, 0, len(rec.Inventory)),
	}
	for _, line := range rec.Inventory {
		view.Inventory = append(view.Inventory, lineView{
			ID:       line.ID,
			Quantity: line.Quantity,
			Acquired: line.Acquired,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

func (a *API) handleActiveTrades(w http.ResponseWriter, r *http.Request) {
	views := a.engine.ActiveSessions()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(views)
}
