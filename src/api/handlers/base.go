package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"papertrade/src/api/controllers"
	"papertrade/src/clients/market"
	"papertrade/src/config"
	"papertrade/src/engine"
	"papertrade/src/models"
	"papertrade/src/repositories"
	"papertrade/src/schemas"
	"papertrade/src/services"
	"papertrade/src/utils"
)

type AuthController interface {
	Register(ctx context.Context, req schemas.RegisterRequest) error
	Login(ctx context.Context, req schemas.LoginRequest) (*schemas.TokenResponse, error)
}

type PortfolioController interface {
	GetPortfolio(ctx context.Context, userID int64) (*schemas.PortfolioResponse, error)
	GetTransactions(ctx context.Context, userID int64) ([]schemas.TransactionResponse, error)
	ExecuteTrade(ctx context.Context, userID int64, side models.TradeSide, req schemas.TradeRequest) (*schemas.TradeResponse, error)
}

type MarketController interface {
	GetQuote(ctx context.Context, ticker string) (*schemas.QuoteResponse, error)
	Search(ctx context.Context, query string) ([]market.Asset, error)
}

type Handler struct {
	Auth      AuthController
	Portfolio PortfolioController
	Market    MarketController
	Logger    *logrus.Logger
	TokenAuth *jwtauth.JWTAuth
}

func NewHandler(cfg *config.Config, db *pgxpool.Pool, marketClient *market.Client) (*Handler, error) {
	users := repositories.NewUserRepository(db)
	portfolios := repositories.NewPortfolioRepository(db)
	transactions := repositories.NewTransactionRepository(db)

	authService, err := services.NewAuthService(cfg, users)
	if err != nil {
		return nil, err
	}

	controller := controllers.NewController(authService, portfolios, transactions, marketClient)
	logger := utils.NewLogger(utils.ParseLogLevel(cfg.Service.LogLevel), false, "")

	return &Handler{
		Auth:      controller,
		Portfolio: controller,
		Market:    controller,
		Logger:    logger,
		TokenAuth: authService.TokenAuth(),
	}, nil
}

func (h *Handler) respond(w http.ResponseWriter, _ *http.Request, data interface{}, status int) {
	res, err := json.Marshal(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}

// HandleErrors maps the typed errors of the lower layers onto HTTP statuses.
func (h *Handler) HandleErrors(w http.ResponseWriter, err error) {
	var httpErr *utils.HTTPError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		h.respond(w, nil, map[string]string{"error": "Request timed out"}, http.StatusGatewayTimeout)
	case errors.As(err, &httpErr):
		h.respond(w, nil, map[string]string{"error": httpErr.Message}, httpErr.Code)
	case errors.Is(err, engine.ErrInvalidQuantity),
		errors.Is(err, engine.ErrUnsettlableTotal),
		errors.Is(err, engine.ErrInsufficientFunds),
		errors.Is(err, engine.ErrInsufficientHoldings),
		errors.Is(err, engine.ErrHoldingNotFound):
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusBadRequest)
	case errors.Is(err, engine.ErrTickerNotFound),
		errors.Is(err, market.ErrTickerNotFound),
		errors.Is(err, repositories.ErrNotFound):
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusNotFound)
	case errors.Is(err, repositories.ErrConcurrentModification),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrEmailTaken):
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusConflict)
	case errors.Is(err, services.ErrInvalidCredentials):
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusUnauthorized)
	case err != nil:
		h.Logger.WithError(err).Error("unhandled request error")
		h.respond(w, nil, map[string]string{"error": "Internal Server Error"}, http.StatusInternalServerError)
	default:
		h.respond(w, nil, map[string]string{"error": "Unhandled error"}, http.StatusInternalServerError)
	}
}

// currentUserID resolves the authenticated user from the verified token.
func (h *Handler) currentUserID(r *http.Request) (int64, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return 0, utils.Unauthorized("invalid or missing token")
	}
	userID, err := services.UserIDFromClaims(claims)
	if err != nil {
		return 0, utils.Unauthorized("invalid token claims")
	}
	return userID, nil
}
