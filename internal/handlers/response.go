package handlers

import (
	"encoding/json"
	"net/http"

	"taskBoard/internal/logger"
)

const (
	codeBadRequest  = "BAD_REQUEST"
	codeInternal    = "INTERNAL"
	codeUnsupported = "UNSUPPORTED_MEDIA_TYPE"
)

type Payload struct {
	Key     string
	Payload any
}

func toPayload(key string, pl any) Payload {
	return Payload{Key: key, Payload: pl}
}

// responseWithJSON writes an object assembled from key/value payloads.
func responseWithJSON(w http.ResponseWriter, code int, payload ...Payload) {
	storage := make(map[string]any, len(payload))
	for _, pl := range payload {
		storage[pl.Key] = pl.Payload
	}
	responseWithBody(w, code, storage)
}

func responseWithBody(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("HTTP: Ошибка кодирования ответа", err)
	}
}

func responseWithError(w http.ResponseWriter, code int, message, errCode string) {
	responseWithJSON(w, code,
		toPayload("error", message),
		toPayload("code", errCode),
	)
}
