package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	cartapp "github.com/dmehra2102/storefront/internal/cart/application"
	"github.com/dmehra2102/storefront/internal/checkout/application"
	"github.com/dmehra2102/storefront/internal/checkout/domain"
	"github.com/dmehra2102/storefront/pkg/httpx"
	"github.com/dmehra2102/storefront/pkg/logging"
)

const (
	IdempotencyHeader = "Idempotency-Key"

	msgMissingRequired = "Preencha todos os campos obrigatórios (*)"
	msgMissingAddress  = "Informe o endereço de entrega"
	msgDuplicate       = "Pedido já enviado"
	msgFailed          = "Erro ao processar pedido"
	msgRetry           = "Tente novamente ou entre em contato."
)

var (
	ordersSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_orders_submitted_total",
			Help: "Orders handed off to WhatsApp",
		},
		[]string{"service_type"},
	)

	checkoutRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkout_rejected_total",
			Help: "Checkout submissions that did not produce an order",
		},
		[]string{"reason"},
	)
)

// Paths are the client-side views checkout sends the shopper to.
type Paths struct {
	Menu         string
	Confirmation string
}

type Handler struct {
	log     *slog.Logger
	service *application.Service
	paths   Paths
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service, paths Paths) *Handler {
	return &Handler{
		log:     log,
		service: service,
		paths:   paths,
		tracer:  otel.Tracer("checkout-http"),
	}
}

type submitResp struct {
	application.Receipt
	Redirect string `json:"redirect"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.quote)
	r.Post("/", h.submit)
	return r
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "QuoteCheckout")
	defer span.End()

	st := domain.ServiceType(r.URL.Query().Get("service_type"))
	q, err := h.service.Quote(ctx, cartapp.FromContext(ctx), st)
	switch {
	case errors.Is(err, application.ErrEmptyCart):
		http.Redirect(w, r, h.paths.Menu, http.StatusSeeOther)
		return
	case err != nil:
		span.RecordError(err)
		logging.FromCtx(ctx, h.log).Error("checkout quote failed", "err", err)
		httpx.Notify(w, http.StatusInternalServerError, msgFailed, msgRetry)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, q)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SubmitCheckout")
	defer span.End()
	log := logging.FromCtx(ctx, h.log)

	var form domain.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		checkoutRejected.WithLabelValues("bad_request").Inc()
		httpx.Notify(w, http.StatusBadRequest, msgFailed, "invalid body")
		return
	}
	span.SetAttributes(attribute.String("service_type", string(form.ServiceType)))

	req := application.SubmitRequest{
		SessionID:      cartapp.SessionID(ctx),
		IdempotencyKey: r.Header.Get(IdempotencyHeader),
		Form:           form,
	}
	rcpt, err := h.service.Submit(ctx, cartapp.FromContext(ctx), req)
	switch {
	case err == nil:
	case errors.Is(err, application.ErrEmptyCart):
		checkoutRejected.WithLabelValues("empty_cart").Inc()
		http.Redirect(w, r, h.paths.Menu, http.StatusSeeOther)
		return
	case errors.Is(err, domain.ErrMissingRequired):
		checkoutRejected.WithLabelValues("missing_required").Inc()
		httpx.Notify(w, http.StatusUnprocessableEntity, msgMissingRequired, "")
		return
	case errors.Is(err, domain.ErrMissingAddress):
		checkoutRejected.WithLabelValues("missing_address").Inc()
		httpx.Notify(w, http.StatusUnprocessableEntity, msgMissingAddress, "")
		return
	case errors.Is(err, application.ErrDuplicateSubmission):
		checkoutRejected.WithLabelValues("duplicate").Inc()
		httpx.Notify(w, http.StatusConflict, msgDuplicate, "")
		return
	default:
		checkoutRejected.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("checkout submit failed", "err", err)
		httpx.Notify(w, http.StatusInternalServerError, msgFailed, msgRetry)
		return
	}

	ordersSubmitted.WithLabelValues(string(form.ServiceType)).Inc()
	httpx.WriteJSON(w, http.StatusOK, submitResp{Receipt: rcpt, Redirect: h.paths.Confirmation})
}
