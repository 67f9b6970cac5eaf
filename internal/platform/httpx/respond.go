package httpx

import (
	"encoding/json"
	"net/http"
)

// Todos los responses de la API usan el mismo envelope:
//   éxito:  {"success": true, "message"?, <clave de dominio>: ...}
//   error:  {"success": false, "message": "..."}
// Antes esto vivía duplicado en cada módulo; con animals + adoptions
// ya se repetía demasiado y lo movimos acá.

// Envelope es el body genérico de éxito.
type Envelope map[string]any

func WriteJSON(w http.ResponseWriter, status int, body Envelope) {
	if body == nil {
		body = Envelope{}
	}
	if _, ok := body["success"]; !ok {
		body["success"] = true
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
