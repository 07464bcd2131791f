package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/budget_sync_app/internal/apperrors"
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_sync_app/internal/core/ports/repositories"
)

// ownershipChecker validates references supplied by clients. A reference to
// something that does not exist or belongs to another user is a validation error.
type ownershipChecker struct {
	categories     portsrepo.CategoryReader
	linkedAccounts portsrepo.LinkedAccountReader
}

func (c ownershipChecker) checkCategory(ctx context.Context, identity domain.Identity, categoryID *string) error {
	if categoryID == nil {
		return nil
	}
	category, err := c.categories.FindCategoryByID(ctx, *categoryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("unknown category %s: %w", *categoryID, apperrors.ErrValidation)
		}
		return err
	}
	if !identity.CanAccess(category.UserID) {
		return fmt.Errorf("unknown category %s: %w", *categoryID, apperrors.ErrValidation)
	}
	return nil
}

func (c ownershipChecker) checkBankAccount(ctx context.Context, identity domain.Identity, bankAccountID *string) error {
	if bankAccountID == nil {
		return nil
	}
	bankAccount, err := c.linkedAccounts.FindBankAccountByID(ctx, *bankAccountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("unknown bank account %s: %w", *bankAccountID, apperrors.ErrValidation)
		}
		return err
	}
	linked, err := c.linkedAccounts.FindLinkedAccountByID(ctx, bankAccount.LinkedAccountID)
	if err != nil {
		return err
	}
	if !identity.CanAccess(linked.UserID) {
		return fmt.Errorf("unknown bank account %s: %w", *bankAccountID, apperrors.ErrValidation)
	}
	return nil
}

func validateWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("start and end dates are required: %w", apperrors.ErrValidation)
	}
	if domain.CalendarDay(end).Before(domain.CalendarDay(start)) {
		return fmt.Errorf("end date precedes start date: %w", apperrors.ErrValidation)
	}
	return nil
}
