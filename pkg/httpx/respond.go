package httpx

import (
	"encoding/json"
	"net/http"
)

const VariantDestructive = "destructive"

// Notification is the transient message the storefront shows to the shopper.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Variant     string `json:"variant,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Notify writes a destructive notification with the given status.
func Notify(w http.ResponseWriter, status int, title, description string) {
	WriteJSON(w, status, Notification{
		Title:       title,
		Description: description,
		Variant:     VariantDestructive,
	})
}
