package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/interfaces"
	pkgerrors "github.com/DragonBallZLeague/SparkingZero-sub001/pkg/errors"
)

// MaxBodySize bounds request bodies: up to 10 files of ~8M base64 chars
// each, plus metadata.
const MaxBodySize = 96 << 20

func writeJSON(w http.ResponseWriter, logger interfaces.Logger, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", err)
	}
}

// writeError maps an error to its HTTP status and a JSON body. AppError
// context travels as "details" so callers see the remote status code and
// similar facts alongside the message.
func writeError(w http.ResponseWriter, logger interfaces.Logger, err error) {
	statusCode := http.StatusInternalServerError
	payload := map[string]interface{}{"error": err.Error()}

	if appErr, ok := pkgerrors.AsAppError(err); ok {
		statusCode = appErr.StatusCode
		payload["error"] = appErr.Message
		if len(appErr.Context) > 0 {
			payload["details"] = appErr.Context
		}
	}

	writeJSON(w, logger, statusCode, payload)
}
