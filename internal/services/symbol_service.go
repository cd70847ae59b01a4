package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/epeers/tradingvision/internal/models"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrSymbolInvalid is returned when the provider does not recognize a ticker.
	ErrSymbolInvalid = errors.New("symbol not recognized by provider")
	// ErrInvalidStatus is returned for a status value outside the lifecycle set.
	ErrInvalidStatus = errors.New("invalid symbol status")
	// ErrInvalidType is returned for a type value outside the known kinds.
	ErrInvalidType = errors.New("invalid symbol type")
)

// SymbolValidator checks a ticker against the provider before registration.
type SymbolValidator interface {
	ValidateSymbol(ctx context.Context, symbol string) bool
}

// RegistrySymbolStore is the persistence surface for registry management.
type RegistrySymbolStore interface {
	GetByID(ctx context.Context, id int64) (*models.TrackedSymbol, error)
	GetBySymbol(ctx context.Context, ticker string) (*models.TrackedSymbol, error)
	ListAll(ctx context.Context) ([]models.TrackedSymbol, error)
	ListETFs(ctx context.Context) ([]models.TrackedSymbol, error)
	Create(ctx context.Context, s *models.TrackedSymbol) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
}

// RegistryHoldingStore is the edge surface for registry management.
type RegistryHoldingStore interface {
	ListByETF(ctx context.Context, etfID int64) ([]models.HoldingWithSymbol, error)
	CountByETF(ctx context.Context, etfID int64) (int, error)
	SetTracking(ctx context.Context, etfID, holdingSymbolID int64, tracked bool) error
	Delete(ctx context.Context, etfID, holdingSymbolID int64) error
}

// SymbolService manages the tracked-symbol registry.
type SymbolService struct {
	validator SymbolValidator
	symbols   RegistrySymbolStore
	holdings  RegistryHoldingStore
}

// NewSymbolService creates a new SymbolService
func NewSymbolService(validator SymbolValidator, symbols RegistrySymbolStore, holdings RegistryHoldingStore) *SymbolService {
	return &SymbolService{validator: validator, symbols: symbols, holdings: holdings}
}

// AddSymbol registers a ticker for tracking. The ticker is validated against
// the provider first so dead symbols never enter the registry.
func (s *SymbolService) AddSymbol(ctx context.Context, req models.AddSymbolRequest) (*models.TrackedSymbol, error) {
	ticker := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if ticker == "" {
		return nil, ErrSymbolInvalid
	}

	symbolType := strings.ToUpper(strings.TrimSpace(req.Type))
	if symbolType == "" {
		symbolType = models.SymbolTypeStock
	}
	switch symbolType {
	case models.SymbolTypeStock, models.SymbolTypeETF, models.SymbolTypeUnknown:
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, req.Type)
	}

	if !s.validator.ValidateSymbol(ctx, ticker) {
		return nil, fmt.Errorf("%w: %s", ErrSymbolInvalid, ticker)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = ticker
	}
	sym := &models.TrackedSymbol{
		Symbol:              ticker,
		Name:                name,
		Type:                symbolType,
		Status:              models.SymbolStatusActive,
		AddedDate:           time.Now().UTC(),
		HistoricalDataStart: models.DefaultHistoricalStart,
	}
	id, err := s.symbols.Create(ctx, sym)
	if err != nil {
		return nil, err
	}
	sym.ID = id
	log.WithFields(log.Fields{"symbol": ticker, "type": symbolType}).Info("symbol added to registry")
	return sym, nil
}

// GetSymbol retrieves one tracked symbol by id.
func (s *SymbolService) GetSymbol(ctx context.Context, id int64) (*models.TrackedSymbol, error) {
	return s.symbols.GetByID(ctx, id)
}

// ListSymbols retrieves all tracked symbols.
func (s *SymbolService) ListSymbols(ctx context.Context) ([]models.TrackedSymbol, error) {
	return s.symbols.ListAll(ctx)
}

// ListETFs retrieves all tracked ETFs.
func (s *SymbolService) ListETFs(ctx context.Context) ([]models.TrackedSymbol, error) {
	return s.symbols.ListETFs(ctx)
}

// UpdateStatus transitions a symbol between lifecycle states.
func (s *SymbolService) UpdateStatus(ctx context.Context, id int64, status string) error {
	status = strings.ToUpper(strings.TrimSpace(status))
	switch status {
	case models.SymbolStatusActive, models.SymbolStatusInactive, models.SymbolStatusError:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	return s.symbols.UpdateStatus(ctx, id, status)
}

// DeleteSymbol removes a symbol. Symbols still referenced by holdings are
// protected at the store level.
func (s *SymbolService) DeleteSymbol(ctx context.Context, id int64) error {
	return s.symbols.Delete(ctx, id)
}

// HoldingsForETF returns the ETF header plus its constituents by weight.
func (s *SymbolService) HoldingsForETF(ctx context.Context, etfID int64) (*models.ETFHoldingsResponse, error) {
	etf, err := s.symbols.GetByID(ctx, etfID)
	if err != nil {
		return nil, err
	}
	if etf.Type != models.SymbolTypeETF {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotAnETF, etf.Symbol, etf.Type)
	}
	holdings, err := s.holdings.ListByETF(ctx, etfID)
	if err != nil {
		return nil, err
	}
	return &models.ETFHoldingsResponse{
		ETF: models.ETFSummary{
			ID:            etf.ID,
			Symbol:        etf.Symbol,
			Name:          etf.Name,
			Description:   etf.Description,
			TotalHoldings: len(holdings),
		},
		Holdings: holdings,
	}, nil
}

// SetHoldingTracking toggles scheduled collection for one constituent edge.
func (s *SymbolService) SetHoldingTracking(ctx context.Context, etfID, holdingSymbolID int64, tracked bool) error {
	return s.holdings.SetTracking(ctx, etfID, holdingSymbolID, tracked)
}

// DeleteHolding removes one constituent edge. The constituent symbol itself
// stays in the registry.
func (s *SymbolService) DeleteHolding(ctx context.Context, etfID, holdingSymbolID int64) error {
	return s.holdings.Delete(ctx, etfID, holdingSymbolID)
}
