package response

import (
	"encoding/json"
	"net/http"
)

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
}

func Error(w http.ResponseWriter, status int, code string, message string) {
	JSON(w, status, map[string]any{
		"success": false,
		"error":   code,
		"message": message,
	})
}

// ErrorWithDetail adds the underlying error text under "detail".
func ErrorWithDetail(w http.ResponseWriter, status int, code string, message string, err error) {
	payload := map[string]any{
		"success": false,
		"error":   code,
		"message": message,
	}
	if err != nil {
		payload["detail"] = err.Error()
	}
	JSON(w, status, payload)
}
