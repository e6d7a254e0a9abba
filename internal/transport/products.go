package transport

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vladislavdragonenkov/orderlog/internal/domain"
)

// productPayload — JSON-представление товара. Цена в минорных единицах.
type productPayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Code       string `json:"code"`
	PriceMinor int64  `json:"price_minor"`
	Model      string `json:"model"`
	URL        string `json:"url"`
}

func toProductPayload(p domain.Product) productPayload {
	return productPayload{
		ID:         p.ID,
		Name:       p.Name,
		Code:       p.Code,
		PriceMinor: p.PriceMinor,
		Model:      p.Model,
		URL:        p.URL,
	}
}

func (p productPayload) toDomain() domain.Product {
	return domain.Product{
		ID:         p.ID,
		Name:       p.Name,
		Code:       p.Code,
		PriceMinor: p.PriceMinor,
		Model:      p.Model,
		URL:        p.URL,
	}
}

func (a *API) listProducts(w http.ResponseWriter, _ *http.Request) {
	products, err := a.catalog.ListAll()
	if err != nil {
		a.writeDomainError(w, err)
		return
	}

	payload := make([]productPayload, 0, len(products))
	for _, p := range products {
		payload = append(payload, toProductPayload(p))
	}
	a.writeJSON(w, http.StatusOK, payload)
}

func (a *API) getProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	product, err := a.catalog.GetByID(id)
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, toProductPayload(product))
}

func (a *API) createProduct(w http.ResponseWriter, r *http.Request) {
	var payload productPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	product := payload.toDomain()
	if errs := product.ValidateInvariants(); len(errs) > 0 {
		a.writeDomainError(w, errs[0])
		return
	}

	// Клиентский id отбрасывается: репозиторий генерирует свой.
	created, err := a.catalog.Create(product)
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, toProductPayload(created))
}

func (a *API) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var payload productPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	product := payload.toDomain()
	if errs := product.ValidateInvariants(); len(errs) > 0 {
		a.writeDomainError(w, errs[0])
		return
	}

	updated, err := a.catalog.Update(id, product)
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, toProductPayload(updated))
}

func (a *API) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	deleted, err := a.catalog.Delete(id)
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, toProductPayload(deleted))
}
