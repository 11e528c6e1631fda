package handler

import (
	"net/http"
	"strconv"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/repository"
)

// GetLeaderboard serves GET /leaderboard?sort=posts|comments|likes&limit=N
func GetLeaderboard(board LeaderboardStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		sortBy := q.Get("sort")
		if sortBy == "" {
			sortBy = repository.SortByPosts
		}

		limit := repository.DefaultLeaderboardLimit
		if raw := q.Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				respondBadRequest(w, "limit must be a positive integer")
				return
			}
			limit = n
		}

		entries, err := board.GetLeaderboard(r.Context(), sortBy, limit)
		if err != nil {
			respondStoreError(w, r, err, "Failed to fetch leaderboard")
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}
