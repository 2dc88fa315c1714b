package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse es el cuerpo uniforme de error de toda la API:
// {status, message, errors}. Los handlers traducen los errores de dominio
// a este shape; nunca se filtran detalles internos.
type ErrorResponse struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string, errs ...string) {
	if len(errs) == 0 {
		errs = []string{message}
	}
	WriteJSON(w, status, ErrorResponse{
		Status:  status,
		Message: message,
		Errors:  errs,
	})
}

// Unauthorized corta con 401 y body vacío (token ausente o inválido).
func Unauthorized(w http.ResponseWriter) {
	w.WriteHeader(http.StatusUnauthorized)
}
