package routes

import (
	"encoding/json"
	"net/http"

	"vidfetch/failures"
	"vidfetch/logger"
)

// FailureQueryHandler looks up the failure record of one request
func FailureQueryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id parameter required", http.StatusBadRequest)
		return
	}

	record, err := failures.Get(id)
	if err != nil {
		logger.Errorf("Failed to query failure for request %s: %v", id, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if record == nil {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      id,
			"status":  "not_found",
			"message": "No failure recorded for this request",
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":     record.RequestID,
		"status": "failed",
		"record": record,
	})
}

// FailureListHandler lists every journalled failure (admin endpoint)
func FailureListHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	failuresList, err := failures.List()
	if err != nil {
		logger.Errorf("Failed to list failures: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"failures": failuresList,
		"count":    len(failuresList),
	})
}
