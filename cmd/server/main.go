package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"gridclash.ai/internal/persistence/indexdb"
	persistlog "gridclash.ai/internal/persistence/log"
	"gridclash.ai/internal/sim/arena"
	"gridclash.ai/internal/sim/tuning"
	"gridclash.ai/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		arenaID    = flag.String("arena", "arena_1", "arena id")
		seed       = flag.Int64("seed", 0, "terrain seed override (0: use tuning)")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite notification index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(strings.TrimSpace(*tuningPath))
	if err != nil {
		logger.Fatalf("load tuning: %v", err)
	}

	cfg := arena.ConfigFromTuning(tune)
	cfg.ID = *arenaID
	if *seed != 0 {
		cfg.Seed = *seed
	}
	cfg.Tokens = arena.NewMemoryLedger(tune.LedgerBalances)

	a, err := arena.New(cfg)
	if err != nil {
		logger.Fatalf("new arena: %v", err)
	}

	arenaDir := filepath.Join(*dataDir, "arenas", *arenaID)
	if err := os.MkdirAll(arenaDir, 0o755); err != nil {
		logger.Fatalf("data dir: %v", err)
	}

	notifyLog := persistlog.NewNotifyLogger(arenaDir)
	defer notifyLog.Close()
	a.AddNotifier(notifyLog)

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(arenaDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index db: %v", err)
		}
		defer idx.Close()
		a.AddNotifier(idx)
	}

	wsSrv := ws.NewServer(a, logger)
	a.AddNotifier(wsSrv)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := a.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Fatalf("arena loop: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", wsSrv.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/battles", func(w http.ResponseWriter, r *http.Request) {
		if idx == nil {
			http.Error(w, "index disabled", http.StatusServiceUnavailable)
			return
		}
		agentID := r.URL.Query().Get("agent")
		if agentID == "" {
			http.Error(w, "missing agent", http.StatusBadRequest)
			return
		}
		rows, err := idx.BattlesForAgent(r.Context(), agentID, 100)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rows)
	})

	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		logger.Printf("shutting down")
		cancel()
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutCancel()
		_ = httpSrv.Shutdown(shutCtx)
	}()

	logger.Printf("arena %s listening on %s (grid %dx%d, seed %d)",
		*arenaID, *addr, cfg.GridWidth, cfg.GridHeight, cfg.Seed)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("http: %v", err)
	}
}
