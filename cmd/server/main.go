package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/trackforge/editor/internal/auth"
	"github.com/trackforge/editor/internal/collab"
	"github.com/trackforge/editor/internal/config"
	"github.com/trackforge/editor/internal/db"
	"github.com/trackforge/editor/internal/discovery"
	"github.com/trackforge/editor/internal/document"
	"github.com/trackforge/editor/internal/editor"
	"github.com/trackforge/editor/internal/engine"
	mw "github.com/trackforge/editor/internal/middleware"
	"github.com/trackforge/editor/internal/snapshot"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	snapshots := snapshot.NewService(pool)
	if err := snapshots.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("prepare database: %w", err)
	}

	authService := auth.NewService(cfg.JWTSecret)
	hub := collab.NewHub(collab.HubOptions{
		Engine: engine.Options{
			Session: editor.Options{
				HistoryLimit: cfg.HistoryLimit,
				GridDensity:  cfg.GridDensity,
			},
			SamplesPerSegment: cfg.SamplesPerSegment,
			Width:             float64(cfg.WindowWidth),
			Height:            float64(cfg.WindowHeight),
			Logger:            slog.Default(),
		},
		Load:   loadLatest(snapshots),
		Save:   saveSnapshot(snapshots),
		Logger: slog.Default(),
	})
	go hub.Run(ctx)

	if cfg.Advertise {
		announcer, err := discovery.Advertise(cfg.Port, wsRoute)
		if err != nil {
			slog.Warn("mdns advertise failed", "error", err)
		} else {
			defer announcer.Shutdown()
			slog.Info("advertising on local network", "service", discovery.ServiceType)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      routes(cfg, hub, authService, snapshot.NewHandler(snapshots)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

const wsRoute = "/ws/tracks/{trackId}"

func routes(cfg *config.Config, hub *collab.Hub, authService *auth.Service, snapshots *snapshot.Handler) http.Handler {
	r := mux.NewRouter()

	// Registered ahead of the middleware subrouter so the connection can be
	// hijacked.
	r.HandleFunc(wsRoute, func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, cfg.Origins())
	})

	api := r.PathPrefix("/").Subrouter()
	api.Use(mw.Recovery)
	api.Use(mw.Logger)
	api.Use(mw.CORS(cfg.Origins()))

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	authHandler := auth.NewHandler(authService)
	api.HandleFunc("/sessions", authHandler.CreateSession).Methods("POST", "OPTIONS")
	api.Handle("/sessions/me", authService.Middleware(http.HandlerFunc(authHandler.Me))).Methods("GET")
	snapshots.Routes(api)
	return r
}

func loadLatest(snapshots *snapshot.Service) collab.Loader {
	return func(ctx context.Context, trackID string) (*document.TrackDocument, error) {
		doc, err := snapshots.Latest(ctx, trackID)
		if errors.Is(err, snapshot.ErrNotFound) {
			return nil, collab.ErrNotFound
		}
		return doc, err
	}
}

func saveSnapshot(snapshots *snapshot.Service) collab.Saver {
	return func(ctx context.Context, doc *document.TrackDocument) (string, error) {
		snap, err := snapshots.Save(ctx, doc)
		if err != nil {
			return "", err
		}
		return snap.ID, nil
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, authSvc *auth.Service, origins []string) {
	trackID := mux.Vars(r)["trackId"]

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	claims, err := authSvc.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if claims.TrackID != trackID {
		http.Error(w, "token is for another track", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := collab.NewClient(hub, conn, claims.DisplayName, trackID, clientID)

	hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
