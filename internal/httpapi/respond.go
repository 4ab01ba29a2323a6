package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondDetail responde {"detail": ...}, o formato de erro que os fronts
// dos sites já consomem.
func respondDetail(w http.ResponseWriter, status int, format string, args ...any) {
	respondJSON(w, status, map[string]string{"detail": fmt.Sprintf(format, args...)})
}

// decodeJSON lê o body em dst; em caso de body inválido responde 400 e
// retorna false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		respondDetail(w, http.StatusBadRequest, "Invalid JSON body: %v", err)
		return false
	}
	return true
}
