package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/storefront/internal/cart/application"
	"github.com/dmehra2102/storefront/pkg/httpx"
	"github.com/dmehra2102/storefront/pkg/logging"
)

const (
	msgAddFailed    = "Erro ao adicionar item ao carrinho"
	msgUpdateFailed = "Erro ao atualizar o carrinho"
	msgRetry        = "Tente novamente ou entre em contato."
)

type Handler struct {
	log    *slog.Logger
	tracer trace.Tracer
}

func NewHandler(log *slog.Logger) *Handler {
	return &Handler{
		log:    log,
		tracer: otel.Tracer("cart-http"),
	}
}

// Routes expects the Session middleware to run in front of it.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.getCart)
	r.Delete("/", h.clearCart)
	r.Post("/items", h.addItem)
	r.Patch("/items/{id}", h.updateQuantity)
	r.Delete("/items/{id}", h.removeItem)
	return r
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetCart")
	defer span.End()

	c, err := application.FromContext(ctx).Snapshot(ctx)
	if err != nil {
		logging.FromCtx(ctx, h.log).Error("load cart failed", "err", err)
		httpx.Notify(w, http.StatusInternalServerError, msgUpdateFailed, msgRetry)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toCartResp(c))
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AddItem")
	defer span.End()

	var req addItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Notify(w, http.StatusBadRequest, msgAddFailed, "invalid body")
		return
	}
	span.SetAttributes(attribute.String("product_id", req.ProductID))

	store := application.FromContext(ctx)
	item, err := store.AddItem(ctx, req.toDomain())
	if err != nil {
		logging.FromCtx(ctx, h.log).Error("add item failed", "err", err)
		httpx.Notify(w, http.StatusInternalServerError, msgAddFailed, msgRetry)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateQuantity")
	defer span.End()

	var req updateQuantityReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Notify(w, http.StatusBadRequest, msgUpdateFailed, "invalid body")
		return
	}

	store := application.FromContext(ctx)
	if err := store.UpdateQuantity(ctx, chi.URLParam(r, "id"), int(req.Quantity)); err != nil {
		logging.FromCtx(ctx, h.log).Error("update quantity failed", "err", err)
		httpx.Notify(w, http.StatusInternalServerError, msgUpdateFailed, msgRetry)
		return
	}
	h.writeCart(w, r)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RemoveItem")
	defer span.End()

	if err := application.FromContext(ctx).RemoveItem(ctx, chi.URLParam(r, "id")); err != nil {
		logging.FromCtx(ctx, h.log).Error("remove item failed", "err", err)
		httpx.Notify(w, http.StatusInternalServerError, msgUpdateFailed, msgRetry)
		return
	}
	h.writeCart(w, r)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ClearCart")
	defer span.End()

	if err := application.FromContext(ctx).Clear(ctx); err != nil {
		logging.FromCtx(ctx, h.log).Error("clear cart failed", "err", err)
		httpx.Notify(w, http.StatusInternalServerError, msgUpdateFailed, msgRetry)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeCart(w http.ResponseWriter, r *http.Request) {
	c, err := application.FromContext(r.Context()).Snapshot(r.Context())
	if err != nil {
		httpx.Notify(w, http.StatusInternalServerError, msgUpdateFailed, msgRetry)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toCartResp(c))
}
