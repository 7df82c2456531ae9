package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/inamate/geoview/internal/api"
	"github.com/inamate/geoview/internal/config"
	"github.com/inamate/geoview/internal/engine"
	"github.com/inamate/geoview/internal/session"
	"github.com/inamate/geoview/internal/typeid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engineOpts := engine.Options{
		ScaleExtent: cfg.ScaleExtent(),
		Threshold:   cfg.AntipodeThreshold,
	}

	hub := session.NewHub(session.Options{Engine: engineOpts, TileURL: cfg.TileURL})
	go hub.Run(ctx)

	apiHandler := api.NewHandler(engineOpts, cfg.TileURL)

	r := mux.NewRouter()

	// Global middleware
	r.Use(api.Recovery)
	r.Use(api.Logger)
	r.Use(api.CORS(cfg.Origins()))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/api/samples", apiHandler.ListSamples).Methods("GET")
	r.HandleFunc("/api/samples/{name}", apiHandler.GetSample).Methods("GET")
	r.HandleFunc("/api/render", apiHandler.Render).Methods("POST", "OPTIONS")

	// WebSocket endpoint
	originPatterns := hostPatterns(cfg.Origins())
	r.HandleFunc("/ws/scene", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, originPatterns)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *session.Hub, originPatterns []string) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	// peer is the browser's own client uuid, kept across reconnects
	peer := session.ParsePeer(r.URL.Query().Get("client"))
	client := session.NewClient(hub, conn, typeid.NewSessionID(), peer)
	slog.Info("websocket connected", "session", client.ID, "peer", peer, "remote", r.RemoteAddr)

	hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

// hostPatterns reduces origins to the host patterns websocket.Accept
// matches against.
func hostPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			out = append(out, o)
			continue
		}
		out = append(out, u.Host)
	}
	return out
}
