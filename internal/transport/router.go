package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderlog/internal/domain"
	"github.com/vladislavdragonenkov/orderlog/internal/service/orders"
)

// API обслуживает HTTP-фасад каталога и заказов. Обе группы ручек —
// тонкий pass-through поверх репозитория каталога и обработчика заказов.
type API struct {
	catalog domain.CatalogRepository
	orders  *orders.Handler
	logger  *log.Entry
}

// NewAPI конструирует HTTP-фасад.
func NewAPI(catalog domain.CatalogRepository, orders *orders.Handler, logger *log.Entry) *API {
	if logger == nil {
		logger = log.New().WithField("component", "http-api")
	}
	return &API{
		catalog: catalog,
		orders:  orders,
		logger:  logger,
	}
}

// Router собирает маршруты API.
func (a *API) Router() http.Handler {
	r := mux.NewRouter()
	s := r.PathPrefix("/api/v1").Subrouter()

	s.HandleFunc("/products", a.listProducts).Methods(http.MethodGet)
	s.HandleFunc("/products", a.createProduct).Methods(http.MethodPost)
	s.HandleFunc("/products/{id}", a.getProduct).Methods(http.MethodGet)
	s.HandleFunc("/products/{id}", a.updateProduct).Methods(http.MethodPut)
	s.HandleFunc("/products/{id}", a.deleteProduct).Methods(http.MethodDelete)

	s.HandleFunc("/orders", a.listOrders).Methods(http.MethodGet)
	s.HandleFunc("/orders", a.createOrder).Methods(http.MethodPost)
	s.HandleFunc("/orders", a.deleteOrder).Methods(http.MethodDelete)

	return a.logMiddleware(r)
}

func (a *API) logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.logger.WithFields(log.Fields{
			"method":     r.Method,
			"url":        r.URL.Path,
			"remoteAddr": r.RemoteAddr,
		}).Debug("got a new request")
		h.ServeHTTP(w, r)
	})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.WithError(err).Error("write response")
	}
}

type errorResponse struct {
	Error      string   `json:"error"`
	MissingIDs []string `json:"missing_ids,omitempty"`
}

// writeDomainError транслирует доменную ошибку в HTTP-статус.
func (a *API) writeDomainError(w http.ResponseWriter, err error) {
	var pnf *domain.ProductsNotFoundError
	if errors.As(err, &pnf) {
		a.writeJSON(w, http.StatusNotFound, errorResponse{Error: pnf.Error(), MissingIDs: pnf.IDs})
		return
	}

	switch {
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		a.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrOrderExists):
		a.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case domain.IsClientError(err):
		a.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		a.logger.WithError(err).Error("request failed")
		a.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
