package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Handler handles HTTP requests for items and recovery claims.
type Handler struct {
	store *RedisStore
	auth  *TokenService
	log   *slog.Logger
}

// NewHandler creates a Handler with dependencies.
func NewHandler(store *RedisStore, auth *TokenService, log *slog.Logger) *Handler {
	return &Handler{store: store, auth: auth, log: log}
}

// handleRoot processes GET /.
func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("WhereIsIt app is cooking!"))
}

// handleIssueToken processes POST /jwt. The whole payload becomes the token
// claims; only the email field is mandatory.
func (h *Handler) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		jsonError(w, "User email is required to generate token", http.StatusBadRequest)
		return
	}
	token, err := h.auth.Issue(payload)
	if err != nil {
		if err == ErrEmailRequired {
			jsonError(w, "User email is required to generate token", http.StatusBadRequest)
			return
		}
		h.log.Error("signing token failed", "err", err)
		jsonError(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// handleListItems processes GET /items with optional sort and limit params.
func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	sort := r.URL.Query().Get("sort")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 0 {
		limit = 0
	}
	items, err := h.store.ListItems(r.Context(), sort, limit)
	if err != nil {
		h.log.Error("listing items failed", "err", err)
		jsonMessage(w, "Failed to fetch items", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// handleAllItems processes GET /allItems.
func (h *Handler) handleAllItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListItems(r.Context(), "", 0)
	if err != nil {
		h.log.Error("listing items failed", "err", err)
		jsonMessage(w, "Failed to fetch items", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// handleGetItem processes GET /items/{id}.
func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := ValidateID(id); err != nil {
		jsonError(w, "Invalid ID format", http.StatusBadRequest)
		return
	}
	item, err := h.store.GetItem(r.Context(), id)
	if err != nil {
		if err == ErrNotFound {
			jsonMessage(w, "Item not found", http.StatusNotFound)
			return
		}
		h.log.Error("fetching item failed", "id", id, "err", err)
		jsonError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// handleAddItem processes POST /addItems.
func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var item Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		jsonError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	item.ID = ""
	id, err := h.store.InsertItem(r.Context(), &item)
	if err != nil {
		h.log.Error("inserting item failed", "err", err)
		jsonMessage(w, "Failed to add item", http.StatusInternalServerError)
		return
	}
	if claims, ok := userFromContext(r.Context()); ok {
		h.log.Debug("item added", "id", id, "by", claims["email"])
	}
	respondJSON(w, http.StatusCreated, map[string]string{
		"message":    "Item added successfully",
		"insertedId": id,
	})
}

// handleUpdateItem processes PUT /updateItems/{id}: a full document replace.
func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := ValidateID(id); err != nil {
		jsonError(w, "Invalid ID format", http.StatusBadRequest)
		return
	}
	var item Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		jsonError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	matched, err := h.store.ReplaceItem(r.Context(), id, &item)
	if err != nil {
		h.log.Error("replacing item failed", "id", id, "err", err)
		jsonError(w, "Failed to update item.", http.StatusInternalServerError)
		return
	}
	if matched == 0 {
		jsonError(w, "Item not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"modifiedCount": matched})
}

// handlePatchStatus processes PATCH /items/{id}: updates only the status.
func (h *Handler) handlePatchStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := ValidateID(id); err != nil {
		jsonError(w, "Invalid ID format", http.StatusBadRequest)
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	matched, modified, err := h.store.PatchStatus(r.Context(), id, body.Status)
	if err != nil {
		h.log.Error("patching status failed", "id", id, "err", err)
		jsonError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if matched == 0 {
		jsonError(w, "Item not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"modifiedCount": modified})
}

// handleDeleteItem processes DELETE /items/{id}.
func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := ValidateID(id); err != nil {
		jsonError(w, "Invalid ID format", http.StatusBadRequest)
		return
	}
	deleted, err := h.store.DeleteItem(r.Context(), id)
	if err != nil {
		h.log.Error("deleting item failed", "id", id, "err", err)
		jsonError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if deleted == 0 {
		jsonError(w, "Item not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"deletedCount": deleted})
}

// handleListRecovered processes GET /recoveredItems?email=...
func (h *Handler) handleListRecovered(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		jsonMessage(w, "Email query required", http.StatusBadRequest)
		return
	}
	recs, err := h.store.ListRecoveredByEmail(r.Context(), email)
	if err != nil {
		h.log.Error("listing recovered items failed", "email", email, "err", err)
		jsonMessage(w, "Failed to fetch recovered items", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, recs)
}

// handleAddRecovered processes POST /recoveredItems, enforcing at most one
// claim per original item.
func (h *Handler) handleAddRecovered(w http.ResponseWriter, r *http.Request) {
	var rec RecoveredItem
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		jsonError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := ValidateID(rec.OriginalItemID); err != nil {
		jsonError(w, "Invalid ID format", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(rec.Email) == "" {
		jsonError(w, "recoveredBy.email is required", http.StatusBadRequest)
		return
	}
	rec.ID = ""
	id, err := h.store.InsertRecovered(r.Context(), &rec)
	if err != nil {
		if err == ErrAlreadyRecovered {
			jsonMessage(w, "Item already recovered", http.StatusBadRequest)
			return
		}
		h.log.Error("inserting recovered item failed", "err", err)
		jsonMessage(w, "Failed to add recovered item", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"insertedId": id})
}

// respondJSON writes v as the JSON response body.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// jsonError writes an error-keyed JSON body.
func jsonError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

// jsonMessage writes a message-keyed JSON body. Some routes report failures
// under "message" rather than "error"; both shapes are part of the contract.
func jsonMessage(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"message": message})
}
