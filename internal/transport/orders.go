package transport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vladislavdragonenkov/orderlog/internal/domain"
	"github.com/vladislavdragonenkov/orderlog/internal/service/orders"
)

type orderItemPayload struct {
	ProductID  string `json:"product_id"`
	Qty        int32  `json:"qty"`
	PriceMinor int64  `json:"price_minor,omitempty"`
}

type orderPayload struct {
	CustomerID string             `json:"customer_id"`
	OrderID    string             `json:"order_id"`
	Status     string             `json:"status"`
	Items      []orderItemPayload `json:"items"`
	TotalMinor int64              `json:"total_minor"`
	CreatedAt  time.Time          `json:"created_at"`
	// Published отражает двухфазный исход: заказ зафиксирован, событие могло
	// не опубликоваться.
	Published *bool `json:"published,omitempty"`
}

func toOrderPayload(order domain.Order, published *bool) orderPayload {
	items := make([]orderItemPayload, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemPayload{
			ProductID:  item.ProductID,
			Qty:        item.Qty,
			PriceMinor: item.PriceMinor,
		})
	}
	return orderPayload{
		CustomerID: order.CustomerID,
		OrderID:    order.ID,
		Status:     string(order.Status),
		Items:      items,
		TotalMinor: order.TotalMinor,
		CreatedAt:  order.CreatedAt,
		Published:  published,
	}
}

type createOrderRequest struct {
	CustomerID string             `json:"customer_id"`
	Items      []orderItemPayload `json:"items"`
}

func (a *API) createOrder(w http.ResponseWriter, r *http.Request) {
	var payload createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	req := orders.CreateRequest{CustomerID: payload.CustomerID}
	for _, item := range payload.Items {
		req.Items = append(req.Items, orders.ItemRequest{
			ProductID: item.ProductID,
			Qty:       item.Qty,
		})
	}

	result, err := a.orders.CreateOrder(req)
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, toOrderPayload(result.Order, &result.Published))
}

func (a *API) listOrders(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customer")
	if customerID == "" {
		a.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "customer query parameter is required"})
		return
	}

	// С orderId возвращается одиночный заказ, без него — весь скоуп клиента.
	if orderID := r.URL.Query().Get("orderId"); orderID != "" {
		order, err := a.orders.GetOrder(customerID, orderID)
		if err != nil {
			a.writeDomainError(w, err)
			return
		}
		a.writeJSON(w, http.StatusOK, toOrderPayload(order, nil))
		return
	}

	list, err := a.orders.ListOrders(customerID)
	if err != nil {
		a.writeDomainError(w, err)
		return
	}

	payload := make([]orderPayload, 0, len(list))
	for _, order := range list {
		payload = append(payload, toOrderPayload(order, nil))
	}
	a.writeJSON(w, http.StatusOK, payload)
}

func (a *API) deleteOrder(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customer")
	orderID := r.URL.Query().Get("orderId")
	if customerID == "" || orderID == "" {
		a.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "customer and orderId query parameters are required"})
		return
	}

	result, err := a.orders.DeleteOrder(customerID, orderID)
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, toOrderPayload(result.Order, &result.Published))
}
