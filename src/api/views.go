package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	handlers "papertrade/src/api/handlers"
	"papertrade/src/clients/market"
	"papertrade/src/config"
	"papertrade/src/utils"
)

type Server struct {
	Router  *chi.Mux
	Handler handlers.Handler
}

func NewServer(cfg *config.Config, db *pgxpool.Pool, marketClient *market.Client) (*Server, error) {
	handler, err := handlers.NewHandler(cfg, db, marketClient)
	if err != nil {
		return nil, err
	}
	server := &Server{
		Router:  chi.NewRouter(),
		Handler: *handler,
	}
	server.InitRoutes()
	return server, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Use(requestID)

	s.Router.Get("/alive", handlers.Healthcheck)

	s.Router.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.Handler.Register)
		r.Post("/login", s.Handler.Login)
	})

	// Everything below requires a verified identity.
	s.Router.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(s.Handler.TokenAuth))
		r.Use(jwtauth.Authenticator)

		r.Route("/api/portfolio", func(r chi.Router) {
			r.Get("/", s.Handler.GetPortfolio)
			r.Get("/transactions", s.Handler.GetTransactions)
			r.Post("/buy", s.Handler.BuyAsset)
			r.Post("/sell", s.Handler.SellAsset)
		})

		r.Route("/api/market", func(r chi.Router) {
			r.Get("/quote/{ticker}", s.Handler.GetQuote)
			r.Get("/search/{query}", s.Handler.SearchAssets)
		})
	})
}

// requestID tags every request context for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := utils.WithRequestID(r.Context(), uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func NewHTTPServer(server *Server, port string) *http.Server {
	if port == "" {
		port = "8000"
	}
	httpServer := &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Handler:      server,
	}
	return httpServer
}
