package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/expensesplit/internal/calculator"
	"github.com/mmynk/expensesplit/internal/errs"
	"github.com/mmynk/expensesplit/internal/export"
	"github.com/mmynk/expensesplit/internal/metrics"
	"github.com/mmynk/expensesplit/internal/models"
	"github.com/mmynk/expensesplit/internal/storage"
	"github.com/mmynk/expensesplit/internal/validation"
)

// CreateUserRequest is the payload of POST /createUser.
type CreateUserRequest struct {
	Name         string `json:"name" validate:"required,min=3,max=80"`
	Email        string `json:"email" validate:"required,email"`
	MobileNumber string `json:"mobile_number" validate:"required,max=10"`
}

// GetUserRequest is the payload of POST /getUser.
type GetUserRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// CreateExpenseRequest is the payload of POST /expenses.
type CreateExpenseRequest struct {
	Description  string          `json:"description" validate:"required,max=200"`
	Amount       decimal.Decimal `json:"amount" validate:"positive_decimal"`
	Participants []string        `json:"participants" validate:"required,min=1,dive,required"`
}

// SplitExpenseRequest is the payload of POST /expenses/{id}/split.
// An equal split without participants divides among everyone recorded on
// the expense.
type SplitExpenseRequest struct {
	SplitMethod  string             `json:"split_method" validate:"required"`
	Participants []SplitParticipant `json:"participants" validate:"dive"`
}

// SplitParticipant is one participant of a split request. Amount is read for
// exact splits and Percentage for percentage splits.
type SplitParticipant struct {
	ID         string           `json:"id" validate:"required"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
}

// ExpenseService owns the use cases of the expense splitter. It is an
// explicitly constructed context holding the store handle and configuration.
type ExpenseService struct {
	store   storage.Store
	engine  *calculator.Engine
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures an ExpenseService.
type Option func(*ExpenseService)

// WithEngine sets the split engine. Defaults to calculator.NewEngine().
func WithEngine(engine *calculator.Engine) Option {
	return func(s *ExpenseService) {
		s.engine = engine
	}
}

// WithMetrics enables split metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *ExpenseService) {
		s.metrics = m
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *ExpenseService) {
		s.logger = logger
	}
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store, opts ...Option) *ExpenseService {
	s := &ExpenseService{
		store:  store,
		engine: calculator.NewEngine(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scale returns the number of decimal places amounts are kept at.
func (s *ExpenseService) Scale() int32 {
	return s.engine.Scale()
}

// CreateUser validates and persists a new user. Emails are unique.
func (s *ExpenseService) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.MobileNumber = strings.TrimSpace(req.MobileNumber)

	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	exists, err := s.store.UserEmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("user %w", errs.ErrAlreadyExists)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "User created", "user_id", user.ID)
	return user, nil
}

// GetUser looks a user up by email.
func (s *ExpenseService) GetUser(ctx context.Context, req GetUserRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	return s.store.GetUserByEmail(ctx, req.Email)
}

// CreateExpense validates and persists a new expense. Every listed
// participant must be an existing user.
func (s *ExpenseService) CreateExpense(ctx context.Context, req CreateExpenseRequest) (*models.Expense, error) {
	req.Description = strings.TrimSpace(req.Description)
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	scale := s.engine.Scale()
	if !req.Amount.Equal(req.Amount.Truncate(scale)) {
		return nil, errs.InvalidInput("amount %s has more than %d decimal places", req.Amount, scale)
	}
	if err := s.requireUsers(ctx, req.Participants); err != nil {
		return nil, err
	}

	expense := &models.Expense{
		Description:  req.Description,
		Amount:       req.Amount,
		Participants: req.Participants,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Expense created",
		"expense_id", expense.ID,
		"amount", expense.Amount.String(),
		"participants", len(expense.Participants),
	)
	return expense, nil
}

// GetExpense retrieves an expense with its most recent split.
func (s *ExpenseService) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

// ListExpenses retrieves all expenses without their shares.
func (s *ExpenseService) ListExpenses(ctx context.Context) ([]*models.Expense, error) {
	return s.store.ListExpenses(ctx)
}

// SplitExpense divides an expense among the requested participants, who must
// all be recorded on the expense, and persists the resulting shares,
// replacing any earlier split.
func (s *ExpenseService) SplitExpense(ctx context.Context, expenseID string, req SplitExpenseRequest) (expense *models.Expense, err error) {
	label := "unknown"
	defer func() {
		s.metrics.ObserveSplit(label, err)
	}()

	expense, err = s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	if err = validation.Struct(&req); err != nil {
		return nil, err
	}

	method, err := calculator.ParseMethod(req.SplitMethod)
	if err != nil {
		return nil, err
	}
	label = string(method)

	requested := req.Participants
	if len(requested) == 0 && method == models.SplitEqual {
		requested = make([]SplitParticipant, len(expense.Participants))
		for i, id := range expense.Participants {
			requested[i] = SplitParticipant{ID: id}
		}
	}

	participants := make([]calculator.Participant, len(requested))
	ids := make([]string, len(requested))
	for i, p := range requested {
		participants[i] = calculator.Participant{ID: p.ID, Value: declaredValue(method, p)}
		ids[i] = p.ID
	}

	if err = requireParticipants(expense, ids); err != nil {
		return nil, err
	}
	if err = s.requireUsers(ctx, ids); err != nil {
		return nil, err
	}

	results, err := s.engine.Split(expense.Amount, method, participants)
	if err != nil {
		s.logger.WarnContext(ctx, "Split rejected", "expense_id", expenseID, "method", method, "error", err)
		return nil, err
	}

	shares := make([]models.Share, len(results))
	for i, r := range results {
		shares[i] = models.Share{ExpenseID: expense.ID, UserID: r.ID, Amount: r.Amount}
	}
	if err = s.store.ReplaceShares(ctx, expense.ID, method, shares); err != nil {
		return nil, err
	}

	expense.SplitMethod = method
	expense.Shares = shares

	s.logger.InfoContext(ctx, "Expense split",
		"expense_id", expense.ID,
		"method", method,
		"participants", len(shares),
	)
	return expense, nil
}

// BalanceSheet aggregates the persisted shares per user. If userID is set,
// only that user's row is returned.
func (s *ExpenseService) BalanceSheet(ctx context.Context, userID string) (*models.BalanceSheet, error) {
	var user *models.User
	if userID != "" {
		var err error
		user, err = s.store.GetUserByID(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	records, err := s.store.ListShares(ctx, userID)
	if err != nil {
		return nil, err
	}

	sheet := calculator.CalculateBalances(records)
	if user != nil && len(sheet.Rows) == 0 {
		sheet.Rows = append(sheet.Rows, models.BalanceRow{UserID: user.ID, Name: user.Name, Amount: decimal.Zero})
	}
	return &sheet, nil
}

// ExportBalanceSheet writes the balance sheet workbook to w.
func (s *ExpenseService) ExportBalanceSheet(ctx context.Context, w io.Writer, userID string) error {
	sheet, err := s.BalanceSheet(ctx, userID)
	if err != nil {
		return err
	}
	if err := export.WriteBalanceSheet(w, sheet.Rows, sheet.Total); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Balance sheet exported", "rows", len(sheet.Rows), "user_id", userID)
	return nil
}

// requireUsers returns ErrNotFound for the first ID without a user and
// ErrInvalidInput for duplicates.
func (s *ExpenseService) requireUsers(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return errs.InvalidInput("duplicate participant %q", id)
		}
		seen[id] = true
	}

	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := users[id]; !ok {
			return errs.NotFound("user", id)
		}
	}
	return nil
}

// requireParticipants returns ErrInvalidInput for the first ID that is not
// recorded on the expense.
func requireParticipants(expense *models.Expense, ids []string) error {
	for _, id := range ids {
		if !slices.Contains(expense.Participants, id) {
			return errs.InvalidInput("user %q is not a participant of expense %s", id, expense.ID)
		}
	}
	return nil
}

func declaredValue(method models.SplitMethod, p SplitParticipant) *decimal.Decimal {
	switch method {
	case models.SplitExact:
		return p.Amount
	case models.SplitPercentage:
		return p.Percentage
	}
	return nil
}
