// Package api exposes the expense service over JSON/HTTP.
package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mmynk/expensesplit/internal/metrics"
	"github.com/mmynk/expensesplit/internal/middleware"
	"github.com/mmynk/expensesplit/internal/models"
	"github.com/mmynk/expensesplit/internal/service"
)

// Service is the subset of service.ExpenseService the handlers need.
type Service interface {
	Scale() int32
	CreateUser(ctx context.Context, req service.CreateUserRequest) (*models.User, error)
	GetUser(ctx context.Context, req service.GetUserRequest) (*models.User, error)
	CreateExpense(ctx context.Context, req service.CreateExpenseRequest) (*models.Expense, error)
	GetExpense(ctx context.Context, id string) (*models.Expense, error)
	ListExpenses(ctx context.Context) ([]*models.Expense, error)
	SplitExpense(ctx context.Context, expenseID string, req service.SplitExpenseRequest) (*models.Expense, error)
	ExportBalanceSheet(ctx context.Context, w io.Writer, userID string) error
}

// API routes HTTP requests to the expense service.
type API struct {
	router  *mux.Router
	service Service
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New builds the router. m may be nil, in which case /metrics is not served.
func New(svc Service, m *metrics.Metrics, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	a := &API{
		router:  mux.NewRouter(),
		service: svc,
		metrics: m,
		logger:  logger,
	}
	a.setupRoutes()
	return a
}

func (a *API) setupRoutes() {
	a.router.Use(middleware.Metrics(a.metrics))

	a.router.HandleFunc("/createUser", a.handleCreateUser).Methods(http.MethodPost)
	a.router.HandleFunc("/getUser", a.handleGetUser).Methods(http.MethodPost)

	a.router.HandleFunc("/expenses", a.handleCreateExpense).Methods(http.MethodPost)
	a.router.HandleFunc("/expenses", a.handleListExpenses).Methods(http.MethodGet)
	a.router.HandleFunc("/expenses/{id}", a.handleGetExpense).Methods(http.MethodGet)
	a.router.HandleFunc("/expenses/{id}/split", a.handleSplitExpense).Methods(http.MethodPost)

	a.router.HandleFunc("/balancesheet", a.handleBalanceSheet).Methods(http.MethodGet)

	a.router.HandleFunc("/healthz", a.handleHealth).Methods(http.MethodGet)
	if a.metrics != nil {
		a.router.Handle("/metrics", a.metrics.Handler()).Methods(http.MethodGet)
	}

	// Router middleware skips these two handlers, so they are wrapped here.
	observe := middleware.Metrics(a.metrics)
	a.router.NotFoundHandler = observe(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.writeJSON(w, http.StatusNotFound, errorResponse{Error: "route not found"})
	}))
	a.router.MethodNotAllowedHandler = observe(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	}))
}

// ServeHTTP implements http.Handler.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}
