package app

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/klabast/wb-services/tomme-kalender/internal/logger"
)

// RequireMethod validates that the request uses the specified HTTP method
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// requireAddress returns the trimmed address query parameter or writes a 400
func requireAddress(w http.ResponseWriter, r *http.Request) (string, bool) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		http.Error(w, ErrMissingAddress, http.StatusBadRequest)
		return "", false
	}
	return address, true
}

// parseYear reads the optional year query parameter, falling back to def
func parseYear(w http.ResponseWriter, r *http.Request, def int) (int, bool) {
	yearStr := r.URL.Query().Get("year")
	if yearStr == "" {
		return def, true
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		http.Error(w, ErrInvalidYear, http.StatusBadRequest)
		return 0, false
	}
	return year, true
}

// writeJSON encodes v with the given status code
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Error("Error encoding JSON response")
	}
}
