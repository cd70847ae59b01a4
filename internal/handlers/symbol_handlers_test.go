package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/epeers/tradingvision/internal/models"
	"github.com/epeers/tradingvision/internal/repository"
	"github.com/epeers/tradingvision/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubValidator struct {
	ok bool
}

func (v stubValidator) ValidateSymbol(context.Context, string) bool { return v.ok }

type memRegistry struct {
	byID       map[int64]*models.TrackedSymbol
	byTick     map[string]*models.TrackedSymbol
	referenced map[int64]bool
	nextID     int64
}

func newMemRegistry() *memRegistry {
	return &memRegistry{
		byID:       map[int64]*models.TrackedSymbol{},
		byTick:     map[string]*models.TrackedSymbol{},
		referenced: map[int64]bool{},
	}
}

func (r *memRegistry) add(sym *models.TrackedSymbol) *models.TrackedSymbol {
	r.nextID++
	sym.ID = r.nextID
	r.byID[sym.ID] = sym
	r.byTick[sym.Symbol] = sym
	return sym
}

func (r *memRegistry) GetByID(_ context.Context, id int64) (*models.TrackedSymbol, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrSymbolNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memRegistry) GetBySymbol(_ context.Context, ticker string) (*models.TrackedSymbol, error) {
	s, ok := r.byTick[ticker]
	if !ok {
		return nil, repository.ErrSymbolNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memRegistry) ListAll(_ context.Context) ([]models.TrackedSymbol, error) {
	out := make([]models.TrackedSymbol, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, *s)
	}
	return out, nil
}

func (r *memRegistry) ListETFs(_ context.Context) ([]models.TrackedSymbol, error) {
	var out []models.TrackedSymbol
	for _, s := range r.byID {
		if s.Type == models.SymbolTypeETF {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memRegistry) Create(_ context.Context, s *models.TrackedSymbol) (int64, error) {
	if _, exists := r.byTick[s.Symbol]; exists {
		return 0, repository.ErrDuplicateSymbol
	}
	return r.add(s).ID, nil
}

func (r *memRegistry) UpdateStatus(_ context.Context, id int64, status string) error {
	s, ok := r.byID[id]
	if !ok {
		return repository.ErrSymbolNotFound
	}
	s.Status = status
	return nil
}

func (r *memRegistry) Delete(_ context.Context, id int64) error {
	s, ok := r.byID[id]
	if !ok {
		return repository.ErrSymbolNotFound
	}
	if r.referenced[id] {
		return repository.ErrSymbolReferenced
	}
	delete(r.byTick, s.Symbol)
	delete(r.byID, id)
	return nil
}

type memEdges struct {
	holdings map[int64][]models.HoldingWithSymbol
}

func (e *memEdges) ListByETF(_ context.Context, etfID int64) ([]models.HoldingWithSymbol, error) {
	return e.holdings[etfID], nil
}

func (e *memEdges) CountByETF(_ context.Context, etfID int64) (int, error) {
	return len(e.holdings[etfID]), nil
}

func (e *memEdges) SetTracking(context.Context, int64, int64, bool) error { return nil }
func (e *memEdges) Delete(context.Context, int64, int64) error           { return nil }

func newRegistryRouter(registry *memRegistry, edges *memEdges, validatorOK bool) *gin.Engine {
	symbolSvc := services.NewSymbolService(stubValidator{ok: validatorOK}, registry, edges)
	symbolHandler := NewSymbolHandler(symbolSvc, nil, nil)
	etfHandler := NewETFHandler(symbolSvc, nil)

	router := gin.New()
	router.GET("/symbols", symbolHandler.List)
	router.POST("/symbols", symbolHandler.Add)
	router.GET("/symbols/:id", symbolHandler.Get)
	router.PUT("/symbols/:id/status", symbolHandler.UpdateStatus)
	router.DELETE("/symbols/:id", symbolHandler.Delete)
	router.GET("/etfs/:id/holdings", etfHandler.GetHoldings)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func trackedETF(symbol string) *models.TrackedSymbol {
	return &models.TrackedSymbol{
		Symbol:    symbol,
		Name:      symbol + " Trust",
		Type:      models.SymbolTypeETF,
		Status:    models.SymbolStatusActive,
		AddedDate: time.Now().UTC(),
	}
}

func TestAddSymbolCreated(t *testing.T) {
	router := newRegistryRouter(newMemRegistry(), &memEdges{}, true)

	w := doJSON(t, router, http.MethodPost, "/symbols", models.AddSymbolRequest{Symbol: "aapl"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var sym models.TrackedSymbol
	if err := json.Unmarshal(w.Body.Bytes(), &sym); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if sym.Symbol != "AAPL" {
		t.Errorf("expected ticker normalized to AAPL, got %s", sym.Symbol)
	}
	if sym.Type != models.SymbolTypeStock {
		t.Errorf("expected default type STOCK, got %s", sym.Type)
	}
}

func TestAddSymbolRejectedByProvider(t *testing.T) {
	router := newRegistryRouter(newMemRegistry(), &memEdges{}, false)

	w := doJSON(t, router, http.MethodPost, "/symbols", models.AddSymbolRequest{Symbol: "NOPE"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAddSymbolDuplicate(t *testing.T) {
	registry := newMemRegistry()
	registry.add(&models.TrackedSymbol{Symbol: "AAPL", Name: "Apple Inc.", Type: models.SymbolTypeStock})
	router := newRegistryRouter(registry, &memEdges{}, true)

	w := doJSON(t, router, http.MethodPost, "/symbols", models.AddSymbolRequest{Symbol: "AAPL"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAddSymbolBadType(t *testing.T) {
	router := newRegistryRouter(newMemRegistry(), &memEdges{}, true)

	w := doJSON(t, router, http.MethodPost, "/symbols", models.AddSymbolRequest{Symbol: "AAPL", Type: "BOND"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetSymbolNotFound(t *testing.T) {
	router := newRegistryRouter(newMemRegistry(), &memEdges{}, true)

	w := doJSON(t, router, http.MethodGet, "/symbols/99", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetSymbolBadID(t *testing.T) {
	router := newRegistryRouter(newMemRegistry(), &memEdges{}, true)

	w := doJSON(t, router, http.MethodGet, "/symbols/abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", w.Code)
	}
}

func TestUpdateStatusInvalidValue(t *testing.T) {
	registry := newMemRegistry()
	registry.add(trackedETF("QQQ"))
	router := newRegistryRouter(registry, &memEdges{}, true)

	w := doJSON(t, router, http.MethodPut, "/symbols/1/status", models.UpdateStatusRequest{Status: "PAUSED"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDeleteSymbolReferenced(t *testing.T) {
	registry := newMemRegistry()
	sym := registry.add(&models.TrackedSymbol{Symbol: "AAPL", Name: "Apple Inc.", Type: models.SymbolTypeStock})
	registry.referenced[sym.ID] = true
	router := newRegistryRouter(registry, &memEdges{}, true)

	w := doJSON(t, router, http.MethodDelete, "/symbols/1", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	if _, err := registry.GetByID(context.Background(), sym.ID); err != nil {
		t.Error("referenced symbol should not have been deleted")
	}
}

func TestDeleteSymbolNoContent(t *testing.T) {
	registry := newMemRegistry()
	registry.add(&models.TrackedSymbol{Symbol: "AAPL", Name: "Apple Inc.", Type: models.SymbolTypeStock})
	router := newRegistryRouter(registry, &memEdges{}, true)

	w := doJSON(t, router, http.MethodDelete, "/symbols/1", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetHoldingsNotFound(t *testing.T) {
	router := newRegistryRouter(newMemRegistry(), &memEdges{}, true)

	w := doJSON(t, router, http.MethodGet, "/etfs/7/holdings", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetHoldingsRejectsNonETF(t *testing.T) {
	registry := newMemRegistry()
	registry.add(&models.TrackedSymbol{Symbol: "AAPL", Name: "Apple Inc.", Type: models.SymbolTypeStock})
	router := newRegistryRouter(registry, &memEdges{}, true)

	w := doJSON(t, router, http.MethodGet, "/etfs/1/holdings", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetHoldingsByWeight(t *testing.T) {
	registry := newMemRegistry()
	etf := registry.add(trackedETF("QQQ"))
	edges := &memEdges{holdings: map[int64][]models.HoldingWithSymbol{
		etf.ID: {
			{Symbol: "AAPL", Name: "Apple Inc."},
			{Symbol: "MSFT", Name: "Microsoft Corporation"},
		},
	}}
	router := newRegistryRouter(registry, edges, true)

	w := doJSON(t, router, http.MethodGet, "/etfs/1/holdings", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.ETFHoldingsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.ETF.Symbol != "QQQ" {
		t.Errorf("expected ETF header QQQ, got %s", resp.ETF.Symbol)
	}
	if resp.ETF.TotalHoldings != 2 || len(resp.Holdings) != 2 {
		t.Errorf("expected 2 holdings, got header=%d body=%d", resp.ETF.TotalHoldings, len(resp.Holdings))
	}
}
