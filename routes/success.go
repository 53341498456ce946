package routes

import (
	"encoding/json"
	"net/http"

	"vidfetch/logger"
	"vidfetch/success"
)

// SuccessQueryHandler looks up the delivery record of one request
func SuccessQueryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id parameter required", http.StatusBadRequest)
		return
	}

	record, err := success.Get(id)
	if err != nil {
		logger.Errorf("Failed to query success for request %s: %v", id, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if record == nil {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      id,
			"status":  "not_found",
			"message": "No delivery recorded for this request",
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":     record.RequestID,
		"status": "success",
		"record": record,
	})
}

// SuccessListHandler lists every journalled delivery (admin endpoint)
func SuccessListHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := success.List()
	if err != nil {
		logger.Errorf("Failed to list success records: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success_records": records,
		"count":           len(records),
	})
}
