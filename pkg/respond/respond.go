package respond

import (
	"encoding/json"
	"net/http"
)

// JSON writes data with the given status code. Untyped nil writes no body
// and a nil slice encodes as null; use List for arrays.
func JSON(w http.ResponseWriter, r *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data == nil {
		return
	}
	json.NewEncoder(w).Encode(data)
}

func Error(w http.ResponseWriter, r *http.Request, code int, message string) {
	JSON(w, r, code, map[string]string{"error": message})
}

// List writes items as a JSON array, never null.
func List[T any](w http.ResponseWriter, r *http.Request, code int, items []T) {
	if items == nil {
		items = []T{}
	}
	JSON(w, r, code, items)
}
