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
	"github.com/SscSPs/bookkeeping_engine/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// accountService implements the chart-of-accounts engine
type accountService struct {
	BaseService
	store portsrepo.Store
	cache *BalanceCache
}

// NewAccountService creates a new account service. cache may be nil.
func NewAccountService(store portsrepo.Store, cache *BalanceCache, options ...ServiceOption) portssvc.AccountSvcFacade {
	return &accountService{
		BaseService: newBaseService(options),
		store:       store,
		cache:       cache,
	}
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) AddAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	namePrimary := strings.TrimSpace(req.NamePrimary)
	nameSecondary := strings.TrimSpace(req.NameSecondary)
	if namePrimary == "" || nameSecondary == "" {
		return nil, s.fail(ctx, "add_account", fmt.Errorf("%w: primary and secondary names are required", apperrors.ErrValidation))
	}
	if !req.AccountType.Valid() {
		return nil, s.fail(ctx, "add_account", fmt.Errorf("%w: invalid account type '%s'", apperrors.ErrValidation, req.AccountType))
	}
	if !req.Category.Valid() {
		return nil, s.fail(ctx, "add_account", fmt.Errorf("%w: invalid account category '%s'", apperrors.ErrValidation, req.Category))
	}

	var created domain.Account
	trail := &auditTrail{}
	err := s.withConflictRetry(ctx, "add_account", func() error {
		trail = &auditTrail{}
		return s.store.RunInTx(ctx, func(tx portsrepo.Store) error {
			now := s.Now()
			account := domain.Account{
				AccountID:       uuid.NewString(),
				ParentAccountID: req.ParentAccountID,
				NamePrimary:     namePrimary,
				NameSecondary:   nameSecondary,
				AccountType:     req.AccountType,
				Category:        req.Category,
				Level:           1,
				FullPath:        namePrimary,
				IsActive:        true,
				OpeningBalance:  req.OpeningBalance,
				CurrentBalance:  req.OpeningBalance,
				AuditFields: domain.AuditFields{
					CreatedAt:     now,
					CreatedBy:     userID,
					LastUpdatedAt: now,
					LastUpdatedBy: userID,
				},
			}

			var parent *domain.Account
			if req.ParentAccountID != "" {
				var err error
				if parent, err = s.loadParent(ctx, tx, req.ParentAccountID, req.AccountType); err != nil {
					return err
				}
				account.Level = parent.Level + 1
				account.FullPath = accounting.BuildFullPath(parent.FullPath, namePrimary)
			}

			siblings, err := tx.ListChildAccounts(ctx, req.ParentAccountID, false)
			if err != nil {
				return err
			}
			if err := checkSiblingName(siblings, "", namePrimary); err != nil {
				return err
			}
			if account.Code, err = nextCode(parent, siblings); err != nil {
				return err
			}

			if err := tx.SaveAccount(ctx, account); err != nil {
				return err
			}
			if err := trail.record(ctx, tx, userID, domain.ActionAccountCreate, domain.TableAccounts, account.AccountID, nil, account, now); err != nil {
				return err
			}
			created = account
			return nil
		})
	})
	if err != nil {
		return nil, s.fail(ctx, "add_account", err, slog.String("parent_account_id", req.ParentAccountID))
	}

	s.publish(ctx, trail)
	if s.Metrics != nil {
		s.Metrics.AccountsCreated.Inc()
	}
	s.LogInfo(ctx, "Account created",
		slog.String("account_id", created.AccountID),
		slog.String("code", created.Code))
	return &created, nil
}

// loadParent fetches the parent account and checks that a child of childType may be placed under it.
func (s *accountService) loadParent(ctx context.Context, reader portsrepo.AccountReader, parentID string, childType domain.AccountType) (*domain.Account, error) {
	parent, err := reader.FindAccountByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: parent account %s not found", apperrors.ErrNotFound, parentID)
		}
		return nil, err
	}
	if !parent.IsActive {
		return nil, fmt.Errorf("%w: parent account %s is inactive", apperrors.ErrValidation, parentID)
	}
	if err := accounting.ValidateHierarchy(parent.AccountType, parent.Level, childType); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return parent, nil
}

func checkSiblingName(siblings []domain.Account, selfID, name string) error {
	for _, sib := range siblings {
		if sib.AccountID != selfID && sib.IsActive && sib.NamePrimary == name {
			return fmt.Errorf("%w: an active sibling account named '%s' already exists", apperrors.ErrValidation, name)
		}
	}
	return nil
}

// nextCode derives the code of a new account from its parent and the active siblings.
func nextCode(parent *domain.Account, siblings []domain.Account) (string, error) {
	codes := make([]string, 0, len(siblings))
	for _, sib := range siblings {
		if sib.IsActive {
			codes = append(codes, sib.Code)
		}
	}
	var (
		code string
		err  error
	)
	if parent == nil {
		code, err = accounting.NextRootCode(codes)
	} else {
		code, err = accounting.NextChildCode(parent.Code, codes)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return code, nil
}

func (s *accountService) ValidateAccountHierarchy(ctx context.Context, parentID string, childType domain.AccountType) (bool, error) {
	if !childType.Valid() {
		return false, fmt.Errorf("%w: invalid account type '%s'", apperrors.ErrValidation, childType)
	}
	parent, err := s.store.FindAccountByID(ctx, parentID)
	if err != nil {
		return false, err
	}
	return accounting.ValidateHierarchy(parent.AccountType, parent.Level, childType) == nil, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.store.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, s.fail(ctx, "get_account", err, slog.String("account_id", accountID))
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, fmt.Errorf("%w: invalid account category '%s'", apperrors.ErrValidation, filter.Category)
	}
	accounts, err := s.store.ListAccounts(ctx, filter)
	if err != nil {
		return nil, s.fail(ctx, "list_accounts", err)
	}
	return accounts, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, accountID string, patch domain.AccountPatch, userID string) (*domain.Account, error) {
	if patch.Empty() {
		return nil, s.fail(ctx, "update_account", fmt.Errorf("%w: no fields to update", apperrors.ErrValidation))
	}

	var updated domain.Account
	trail := &auditTrail{}
	balanceTouched := patch.Category != nil || patch.OpeningBalance != nil
	err := s.withConflictRetry(ctx, "update_account", func() error {
		trail = &auditTrail{}
		return s.store.RunInTx(ctx, func(tx portsrepo.Store) error {
			now := s.Now()
			current, err := tx.FindAccountByID(ctx, accountID)
			if err != nil {
				return err
			}
			before := *current
			acc := *current

			children, err := tx.ListChildAccounts(ctx, accountID, true)
			if err != nil {
				return err
			}

			parentID := acc.ParentAccountID
			moved := patch.ParentAccountID != nil && *patch.ParentAccountID != acc.ParentAccountID
			if moved {
				if len(children) > 0 {
					return fmt.Errorf("%w: cannot change the parent of an account that has children", apperrors.ErrValidation)
				}
				if *patch.ParentAccountID == accountID {
					return fmt.Errorf("%w: an account cannot be its own parent", apperrors.ErrValidation)
				}
				parentID = *patch.ParentAccountID
			}

			var parent *domain.Account
			if parentID != "" {
				if moved {
					parent, err = s.loadParent(ctx, tx, parentID, acc.AccountType)
				} else {
					parent, err = tx.FindAccountByID(ctx, parentID)
				}
				if err != nil {
					return err
				}
			}

			if patch.NamePrimary != nil {
				name := strings.TrimSpace(*patch.NamePrimary)
				if name == "" {
					return fmt.Errorf("%w: primary name cannot be empty", apperrors.ErrValidation)
				}
				acc.NamePrimary = name
			}
			if patch.NameSecondary != nil {
				name := strings.TrimSpace(*patch.NameSecondary)
				if name == "" {
					return fmt.Errorf("%w: secondary name cannot be empty", apperrors.ErrValidation)
				}
				acc.NameSecondary = name
			}
			if patch.Category != nil {
				if !patch.Category.Valid() {
					return fmt.Errorf("%w: invalid account category '%s'", apperrors.ErrValidation, *patch.Category)
				}
				acc.Category = *patch.Category
			}
			if patch.OpeningBalance != nil {
				acc.OpeningBalance = *patch.OpeningBalance
			}
			if patch.IsActive != nil {
				if !*patch.IsActive {
					for _, child := range children {
						if child.IsActive {
							return fmt.Errorf("%w: cannot deactivate an account with active children", apperrors.ErrValidation)
						}
					}
				}
				acc.IsActive = *patch.IsActive
			}

			siblings, err := tx.ListChildAccounts(ctx, parentID, false)
			if err != nil {
				return err
			}
			if acc.NamePrimary != before.NamePrimary || moved || (acc.IsActive && !before.IsActive) {
				if err := checkSiblingName(siblings, accountID, acc.NamePrimary); err != nil {
					return err
				}
			}
			if moved {
				acc.ParentAccountID = parentID
				if acc.Code, err = nextCode(parent, siblings); err != nil {
					return err
				}
				acc.Level = 1
				if parent != nil {
					acc.Level = parent.Level + 1
				}
			}
			parentPath := ""
			if parent != nil {
				parentPath = parent.FullPath
			}
			acc.FullPath = accounting.BuildFullPath(parentPath, acc.NamePrimary)

			if balanceTouched {
				if acc.CurrentBalance, err = s.deriveBalance(ctx, tx, acc, nil); err != nil {
					return err
				}
			}

			acc.Touch(userID, now)
			if err := tx.UpdateAccount(ctx, acc); err != nil {
				return err
			}
			if acc.FullPath != before.FullPath {
				if err := s.refreshDescendantPaths(ctx, tx, acc, userID, now); err != nil {
					return err
				}
			}
			if err := trail.record(ctx, tx, userID, domain.ActionAccountUpdate, domain.TableAccounts, accountID, before, acc, now); err != nil {
				return err
			}
			updated = acc
			return nil
		})
	})
	if err != nil {
		return nil, s.fail(ctx, "update_account", err, slog.String("account_id", accountID))
	}

	if balanceTouched {
		s.cache.Purge()
	}
	s.publish(ctx, trail)
	s.LogInfo(ctx, "Account updated", slog.String("account_id", accountID))
	return &updated, nil
}

// refreshDescendantPaths recomputes FullPath below root, walking the whole subtree.
func (s *accountService) refreshDescendantPaths(ctx context.Context, tx portsrepo.Store, root domain.Account, userID string, now time.Time) error {
	all, err := tx.ListAccounts(ctx, domain.AccountFilter{IncludeInactive: true})
	if err != nil {
		return err
	}
	byParent := indexByParent(all)

	queue := []domain.Account{root}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for _, child := range byParent[parent.AccountID] {
			child.FullPath = accounting.BuildFullPath(parent.FullPath, child.NamePrimary)
			child.Touch(userID, now)
			if err := tx.UpdateAccount(ctx, child); err != nil {
				return err
			}
			queue = append(queue, child)
		}
	}
	return nil
}

func indexByParent(accounts []domain.Account) map[string][]domain.Account {
	byParent := make(map[string][]domain.Account)
	for _, acc := range accounts {
		byParent[acc.ParentAccountID] = append(byParent[acc.ParentAccountID], acc)
	}
	return byParent
}

// deriveBalance folds posted activity up to asOf into the opening balance of acc.
func (s *accountService) deriveBalance(ctx context.Context, reader portsrepo.PostedLineReader, acc domain.Account, asOf *time.Time) (decimal.Decimal, error) {
	activity, err := reader.SumPostedActivity(ctx, domain.PostedLineFilter{AccountID: acc.AccountID, To: asOf})
	if err != nil {
		return decimal.Zero, err
	}
	act := activity[acc.AccountID]
	return accounting.ApplyActivity(acc.Category, acc.OpeningBalance, act.Debit, act.Credit)
}

func (s *accountService) DeleteAccount(ctx context.Context, accountID string, force bool, userID string) error {
	trail := &auditTrail{}
	var removed int
	err := s.store.RunInTx(ctx, func(tx portsrepo.Store) error {
		now := s.Now()
		root, err := tx.FindAccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		all, err := tx.ListAccounts(ctx, domain.AccountFilter{IncludeInactive: true})
		if err != nil {
			return err
		}

		// children before parents
		var order []domain.Account
		var walk func(acc domain.Account)
		byParent := indexByParent(all)
		walk = func(acc domain.Account) {
			for _, child := range byParent[acc.AccountID] {
				walk(child)
			}
			order = append(order, acc)
		}
		walk(*root)

		if len(order) > 1 && !force {
			return fmt.Errorf("%w: account %s has child accounts", apperrors.ErrValidation, root.Code)
		}

		ids := make([]string, len(order))
		for i, acc := range order {
			ids[i] = acc.AccountID
		}
		referenced, err := tx.CountLinesForAccounts(ctx, ids)
		if err != nil {
			return err
		}
		if referenced > 0 {
			return fmt.Errorf("%w: account %s or one of its children is referenced by %d journal lines and cannot be deleted",
				apperrors.ErrValidation, root.Code, referenced)
		}

		for _, acc := range order {
			if err := tx.DeleteAccount(ctx, acc.AccountID); err != nil {
				return err
			}
			if err := trail.record(ctx, tx, userID, domain.ActionAccountDelete, domain.TableAccounts, acc.AccountID, acc, nil, now); err != nil {
				return err
			}
		}
		removed = len(order)
		return nil
	})
	if err != nil {
		return s.fail(ctx, "delete_account", err, slog.String("account_id", accountID), slog.Bool("force", force))
	}

	s.cache.Purge()
	s.publish(ctx, trail)
	s.LogInfo(ctx, "Account deleted", slog.String("account_id", accountID), slog.Int("removed", removed))
	return nil
}

func (s *accountService) GetAccountsTree(ctx context.Context, parentID string, includeInactive bool) ([]*domain.AccountNode, error) {
	if parentID != "" {
		if _, err := s.store.FindAccountByID(ctx, parentID); err != nil {
			return nil, s.fail(ctx, "get_accounts_tree", err, slog.String("parent_account_id", parentID))
		}
	}
	accounts, err := s.store.ListAccounts(ctx, domain.AccountFilter{IncludeInactive: includeInactive})
	if err != nil {
		return nil, s.fail(ctx, "get_accounts_tree", err)
	}
	return BuildAccountTree(accounts, parentID), nil
}

// BuildAccountTree assembles the nodes below parentID from a flat, code ordered list.
// Accounts whose parent is absent from the list (e.g. filtered out as inactive) are dropped.
func BuildAccountTree(accounts []domain.Account, parentID string) []*domain.AccountNode {
	nodes := make(map[string]*domain.AccountNode, len(accounts))
	for _, acc := range accounts {
		nodes[acc.AccountID] = &domain.AccountNode{Account: acc, Children: []*domain.AccountNode{}}
	}

	roots := []*domain.AccountNode{}
	for _, acc := range accounts {
		node := nodes[acc.AccountID]
		if acc.ParentAccountID == parentID {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[acc.ParentAccountID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}
	return roots
}

func (s *accountService) GetAccountBalance(ctx context.Context, accountID string, asOf *time.Time) (*domain.AccountBalance, error) {
	if asOf != nil {
		d := domain.DateOnly(*asOf)
		asOf = &d
	}
	if cached, ok := s.cache.Get(accountID, asOf); ok {
		return &cached, nil
	}
	gen := s.cache.Generation()

	acc, err := s.store.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, s.fail(ctx, "get_account_balance", err, slog.String("account_id", accountID))
	}
	activity, err := s.store.SumPostedActivity(ctx, domain.PostedLineFilter{AccountID: accountID, To: asOf})
	if err != nil {
		return nil, s.fail(ctx, "get_account_balance", err, slog.String("account_id", accountID))
	}
	act := activity[accountID]
	current, err := accounting.ApplyActivity(acc.Category, acc.OpeningBalance, act.Debit, act.Credit)
	if err != nil {
		return nil, s.fail(ctx, "get_account_balance", err, slog.String("account_id", accountID))
	}

	balance := domain.AccountBalance{
		AccountID:      accountID,
		OpeningBalance: acc.OpeningBalance,
		PeriodDebit:    act.Debit,
		PeriodCredit:   act.Credit,
		CurrentBalance: current,
	}
	s.cache.Add(gen, accountID, asOf, balance)
	return &balance, nil
}
