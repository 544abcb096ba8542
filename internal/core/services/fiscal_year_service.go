package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/apperrors"
	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bookkeeping_engine/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_engine/internal/dto"
	"github.com/google/uuid"
)

type fiscalYearService struct {
	BaseService
	store portsrepo.Store
}

// NewFiscalYearService creates a new fiscal year service
func NewFiscalYearService(store portsrepo.Store, options ...ServiceOption) portssvc.FiscalYearSvcFacade {
	return &fiscalYearService{
		BaseService: newBaseService(options),
		store:       store,
	}
}

var _ portssvc.FiscalYearSvcFacade = (*fiscalYearService)(nil)

func (s *fiscalYearService) CreateFiscalYear(ctx context.Context, req dto.CreateFiscalYearRequest, userID string) (*domain.FiscalYear, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, s.fail(ctx, "create_fiscal_year", fmt.Errorf("%w: fiscal year name is required", apperrors.ErrValidation))
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, s.fail(ctx, "create_fiscal_year", fmt.Errorf("%w: start and end dates are required", apperrors.ErrValidation))
	}
	start, end := domain.DateOnly(req.StartDate.Time), domain.DateOnly(req.EndDate.Time)
	if !start.Before(end) {
		return nil, s.fail(ctx, "create_fiscal_year", fmt.Errorf("%w: start date must be before end date", apperrors.ErrValidation))
	}

	now := s.Now()
	fy := domain.FiscalYear{
		FiscalYearID: uuid.NewString(),
		Name:         name,
		Description:  strings.TrimSpace(req.Description),
		StartDate:    start,
		EndDate:      end,
		IsActive:     req.IsActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	trail := &auditTrail{}
	err := s.store.RunInTx(ctx, func(tx portsrepo.Store) error {
		existing, err := tx.ListFiscalYears(ctx)
		if err != nil {
			return err
		}
		for _, other := range existing {
			if other.Overlaps(fy) {
				return fmt.Errorf("%w: fiscal year overlaps '%s'", apperrors.ErrValidation, other.Name)
			}
		}
		if err := tx.SaveFiscalYear(ctx, fy); err != nil {
			return err
		}
		if err := trail.record(ctx, tx, userID, domain.ActionFiscalYearCreate, domain.TableFiscalYears, fy.FiscalYearID, nil, fy, now); err != nil {
			return err
		}
		if fy.IsActive {
			return s.deactivateOthers(ctx, tx, existing, fy.FiscalYearID, userID, now, trail)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "create_fiscal_year", err)
	}

	s.publish(ctx, trail)
	s.LogInfo(ctx, "Fiscal year created", slog.String("fiscal_year_id", fy.FiscalYearID), slog.String("name", fy.Name))
	return &fy, nil
}

func (s *fiscalYearService) deactivateOthers(ctx context.Context, tx portsrepo.Store, years []domain.FiscalYear, keepID, userID string, now time.Time, trail *auditTrail) error {
	for _, other := range years {
		if other.FiscalYearID == keepID || !other.IsActive {
			continue
		}
		before := other
		other.IsActive = false
		other.Touch(userID, now)
		if err := tx.UpdateFiscalYear(ctx, other); err != nil {
			return err
		}
		if err := trail.record(ctx, tx, userID, domain.ActionFiscalYearUpdate, domain.TableFiscalYears, other.FiscalYearID, before, other, now); err != nil {
			return err
		}
	}
	return nil
}

func (s *fiscalYearService) GetFiscalYear(ctx context.Context, fiscalYearID string) (*domain.FiscalYear, error) {
	fy, err := s.store.FindFiscalYearByID(ctx, fiscalYearID)
	if err != nil {
		return nil, s.fail(ctx, "get_fiscal_year", err, slog.String("fiscal_year_id", fiscalYearID))
	}
	return fy, nil
}

func (s *fiscalYearService) ListFiscalYears(ctx context.Context) ([]domain.FiscalYear, error) {
	years, err := s.store.ListFiscalYears(ctx)
	if err != nil {
		return nil, s.fail(ctx, "list_fiscal_years", err)
	}
	return years, nil
}

func (s *fiscalYearService) FindFiscalYearForDate(ctx context.Context, date time.Time) (*domain.FiscalYear, error) {
	fy, err := s.store.FindFiscalYearByDate(ctx, domain.DateOnly(date))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			err = fmt.Errorf("%w: no fiscal year contains %s", apperrors.ErrNotFound, date.Format(domain.DateLayout))
		}
		return nil, s.fail(ctx, "find_fiscal_year_for_date", err)
	}
	return fy, nil
}

func (s *fiscalYearService) ActivateFiscalYear(ctx context.Context, fiscalYearID string, userID string) (*domain.FiscalYear, error) {
	var activated domain.FiscalYear
	trail := &auditTrail{}
	err := s.store.RunInTx(ctx, func(tx portsrepo.Store) error {
		now := s.Now()
		fy, err := tx.FindFiscalYearByID(ctx, fiscalYearID)
		if err != nil {
			return err
		}
		if fy.IsClosed {
			return fmt.Errorf("%w: fiscal year '%s' is closed", apperrors.ErrState, fy.Name)
		}
		years, err := tx.ListFiscalYears(ctx)
		if err != nil {
			return err
		}
		if err := s.deactivateOthers(ctx, tx, years, fiscalYearID, userID, now, trail); err != nil {
			return err
		}
		if !fy.IsActive {
			before := *fy
			fy.IsActive = true
			fy.Touch(userID, now)
			if err := tx.UpdateFiscalYear(ctx, *fy); err != nil {
				return err
			}
			if err := trail.record(ctx, tx, userID, domain.ActionFiscalYearUpdate, domain.TableFiscalYears, fiscalYearID, before, *fy, now); err != nil {
				return err
			}
		}
		activated = *fy
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "activate_fiscal_year", err, slog.String("fiscal_year_id", fiscalYearID))
	}

	s.publish(ctx, trail)
	s.LogInfo(ctx, "Fiscal year activated", slog.String("fiscal_year_id", fiscalYearID))
	return &activated, nil
}

func (s *fiscalYearService) CloseFiscalYear(ctx context.Context, fiscalYearID string, userID string) (*domain.FiscalYear, error) {
	var closed domain.FiscalYear
	trail := &auditTrail{}
	err := s.store.RunInTx(ctx, func(tx portsrepo.Store) error {
		now := s.Now()
		fy, err := tx.FindFiscalYearByID(ctx, fiscalYearID)
		if err != nil {
			return err
		}
		if fy.IsClosed {
			return fmt.Errorf("%w: fiscal year '%s' is already closed", apperrors.ErrState, fy.Name)
		}
		drafts, err := tx.CountEntries(ctx, fiscalYearID, domain.Draft)
		if err != nil {
			return err
		}
		if drafts > 0 {
			return fmt.Errorf("%w: fiscal year '%s' still has %d draft entries", apperrors.ErrState, fy.Name, drafts)
		}

		before := *fy
		fy.IsClosed = true
		fy.IsActive = false
		fy.ClosedAt = &now
		fy.ClosedBy = userID
		fy.Touch(userID, now)
		if err := tx.UpdateFiscalYear(ctx, *fy); err != nil {
			return err
		}
		if err := trail.record(ctx, tx, userID, domain.ActionFiscalYearClose, domain.TableFiscalYears, fiscalYearID, before, *fy, now); err != nil {
			return err
		}
		closed = *fy
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "close_fiscal_year", err, slog.String("fiscal_year_id", fiscalYearID))
	}

	s.publish(ctx, trail)
	s.LogInfo(ctx, "Fiscal year closed", slog.String("fiscal_year_id", fiscalYearID))
	return &closed, nil
}
