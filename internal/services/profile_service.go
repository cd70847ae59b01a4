package services

import (
	"context"
	"fmt"
	"time"

	"github.com/epeers/tradingvision/internal/fmp"
	"github.com/epeers/tradingvision/internal/models"
	log "github.com/sirupsen/logrus"
)

// ProfileProvider is the slice of the market-data client the backfill needs.
type ProfileProvider interface {
	GetCompanyProfile(ctx context.Context, symbol string) (*fmp.CompanyProfile, error)
}

// ProfileSymbolStore is the registry surface used by profile operations.
type ProfileSymbolStore interface {
	GetByID(ctx context.Context, id int64) (*models.TrackedSymbol, error)
	ListNeedingProfileByETF(ctx context.Context, etfID int64) ([]models.TrackedSymbol, error)
	ListNeedingProfile(ctx context.Context) ([]models.TrackedSymbol, error)
	UpdateProfile(ctx context.Context, s *models.TrackedSymbol) error
}

// ProfileService backfills descriptive company data for tracked symbols.
// Provider data only ever fills empty fields; operator edits are not clobbered.
type ProfileService struct {
	provider ProfileProvider
	symbols  ProfileSymbolStore
	delay    time.Duration
}

// NewProfileService creates a new ProfileService. delay is the pause between
// consecutive provider calls within one run, a courtesy to the provider's rate
// limits. The delay is not shared: two concurrent runs each pace themselves
// and together can exceed the intended call rate.
func NewProfileService(provider ProfileProvider, symbols ProfileSymbolStore, delay time.Duration) *ProfileService {
	return &ProfileService{provider: provider, symbols: symbols, delay: delay}
}

// BackfillForETF fetches profiles for the ETF's constituents that still have
// empty descriptive fields. Per-symbol failures are recorded and skipped.
func (s *ProfileService) BackfillForETF(ctx context.Context, etfID int64) (*models.ProfilesResult, error) {
	candidates, err := s.symbols.ListNeedingProfileByETF(ctx, etfID)
	if err != nil {
		return nil, err
	}
	return s.backfill(ctx, candidates)
}

// BackfillAll fetches profiles for every symbol missing descriptive data.
func (s *ProfileService) BackfillAll(ctx context.Context) (*models.ProfilesResult, error) {
	candidates, err := s.symbols.ListNeedingProfile(ctx)
	if err != nil {
		return nil, err
	}
	return s.backfill(ctx, candidates)
}

func (s *ProfileService) backfill(ctx context.Context, candidates []models.TrackedSymbol) (*models.ProfilesResult, error) {
	result := &models.ProfilesResult{Total: len(candidates)}
	for i := range candidates {
		if i > 0 {
			if err := s.pause(ctx); err != nil {
				return result, err
			}
		}
		sym := &candidates[i]
		detail := models.ImportDetail{Symbol: sym.Symbol, Name: sym.Name}

		profile, err := s.provider.GetCompanyProfile(ctx, sym.Symbol)
		switch {
		case err != nil:
			result.Errors++
			detail.Status = models.DetailStatusError
			detail.Message = err.Error()
		case profile == nil:
			detail.Status = models.DetailStatusNoProfileData
			detail.Message = "provider returned no profile"
		default:
			fields := applyProfile(sym, profile)
			if len(fields) == 0 {
				detail.Status = models.DetailStatusNoUpdatesNeeded
			} else if err := s.symbols.UpdateProfile(ctx, sym); err != nil {
				result.Errors++
				detail.Status = models.DetailStatusError
				detail.Message = err.Error()
			} else {
				result.Updated++
				detail.Status = models.DetailStatusUpdated
				detail.Message = fmt.Sprintf("updated %d fields", len(fields))
			}
		}
		result.Details = append(result.Details, detail)
	}
	if result.Total > 0 {
		log.WithFields(log.Fields{
			"candidates": result.Total,
			"updated":    result.Updated,
			"errors":     result.Errors,
		}).Info("profile backfill finished")
	}
	return result, nil
}

// ImportProfile fetches and applies the profile for one symbol on demand.
func (s *ProfileService) ImportProfile(ctx context.Context, symbolID int64) (*models.ProfileImportReport, error) {
	sym, err := s.symbols.GetByID(ctx, symbolID)
	if err != nil {
		return nil, err
	}

	start := time.Now().UTC()
	report := &models.ProfileImportReport{
		Symbol: models.SymbolRef{ID: sym.ID, Symbol: sym.Symbol, Name: sym.Name, Type: sym.Type},
	}

	profile, err := s.provider.GetCompanyProfile(ctx, sym.Symbol)
	switch {
	case err != nil:
		report.Message = "profile retrieval failed"
		report.Profile.Errors = append(report.Profile.Errors, err.Error())
	case profile == nil:
		report.Message = fmt.Sprintf("no profile data available for %s", sym.Symbol)
	default:
		report.Profile.Retrieved = true
		fields := applyProfile(sym, profile)
		if len(fields) == 0 {
			report.Success = true
			report.Message = "profile already complete, nothing to update"
		} else if err := s.symbols.UpdateProfile(ctx, sym); err != nil {
			report.Message = "profile update failed"
			report.Profile.Errors = append(report.Profile.Errors, err.Error())
		} else {
			report.Success = true
			report.Profile.Updated = true
			report.Profile.FieldsUpdated = fields
			report.Message = fmt.Sprintf("updated %d profile fields for %s", len(fields), sym.Symbol)
		}
		report.Symbol.Name = sym.Name
		report.Symbol.Type = sym.Type
	}

	end := time.Now().UTC()
	report.Timing = models.ImportTiming{StartTime: start, EndTime: end, DurationMs: end.Sub(start).Milliseconds()}
	return report, nil
}

// applyProfile copies provider fields onto the symbol, touching only fields
// that are still empty, and reports which ones changed. A symbol typed
// UNKNOWN is reclassified from the provider's ETF flag. The name is special
// cased: a name equal to the ticker is a placeholder and may be replaced.
func applyProfile(sym *models.TrackedSymbol, profile *fmp.CompanyProfile) []string {
	var fields []string

	if name := profile.Name(); name != "" && (sym.Name == "" || sym.Name == sym.Symbol) && sym.Name != name {
		sym.Name = name
		fields = append(fields, "name")
	}
	if v := strOrEmpty(profile.Description); v != "" && strOrEmpty(sym.Description) == "" {
		sym.Description = &v
		fields = append(fields, "description")
	}
	if v := strOrEmpty(profile.Sector); v != "" && strOrEmpty(sym.Sector) == "" {
		sym.Sector = &v
		fields = append(fields, "sector")
	}
	if v := strOrEmpty(profile.Industry); v != "" && strOrEmpty(sym.Industry) == "" {
		sym.Industry = &v
		fields = append(fields, "industry")
	}
	if sym.Type == models.SymbolTypeUnknown {
		if profile.IsETF {
			sym.Type = models.SymbolTypeETF
		} else {
			sym.Type = models.SymbolTypeStock
		}
		fields = append(fields, "type")
	}
	return fields
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// pause waits the configured inter-call delay, giving up early on cancellation.
func (s *ProfileService) pause(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
