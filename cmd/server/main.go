package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/user/ecclesia-strategy/config"
	"github.com/user/ecclesia-strategy/internal/deck"
	"github.com/user/ecclesia-strategy/internal/game"
	"github.com/user/ecclesia-strategy/internal/interfaces"
	"github.com/user/ecclesia-strategy/internal/report"
	"github.com/user/ecclesia-strategy/internal/types"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "./config/config.json", "Path to configuration file")
	deckPath := flag.String("deck", "", "Path to a deck file (overrides configuration)")
	flag.Parse()

	// Set up logger
	logger := setupLogger()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Load deck content
	gameDeck, err := loadDeck(cfg, *deckPath, logger)
	if err != nil {
		logger.Fatal("Failed to load deck", zap.Error(err))
	}

	// Initialize session manager
	manager := game.NewManager(gameDeck, cfg.Game)
	manager.SetLogger(logger)
	defer manager.Shutdown()

	// Initialize student store
	students, err := game.NewStudentStore(cfg.Server.StudentStorePath)
	if err != nil {
		logger.Fatal("Failed to open student store", zap.Error(err))
	}

	// Set up HTTP server
	server := setupHTTPServer(cfg, manager, students, logger)

	// Start HTTP server
	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	waitForShutdown(logger)
}

func setupLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}

func loadDeck(cfg config.Config, override string, logger *zap.Logger) (*types.GameDeck, error) {
	path := cfg.Deck.Path
	if override != "" {
		path = override
	}

	if path == "" {
		d, err := deck.Default()
		if err != nil {
			return nil, fmt.Errorf("failed to load embedded deck: %w", err)
		}
		logger.Info("Loaded embedded deck",
			zap.Int("events", len(d.Events)),
			zap.Int("micro_events", len(d.MicroEvents)))
		return d, nil
	}

	d, err := deck.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load deck from %s: %w", path, err)
	}
	logger.Info("Loaded deck",
		zap.String("path", path),
		zap.Int("events", len(d.Events)),
		zap.Int("micro_events", len(d.MicroEvents)))
	return d, nil
}

func setupHTTPServer(cfg config.Config, manager *game.Manager, students *game.StudentStore, logger *zap.Logger) *http.Server {
	// Create router
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Session endpoints
	router.Post("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		var opts types.SessionConfiguration
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
		}

		session := manager.CreateSession(opts)
		writeJSON(w, http.StatusCreated, session.Snapshot())
	})

	router.Get("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]string{"sessions": manager.SessionIDs()})
	})

	// withSession resolves the {id} parameter before invoking a handler.
	withSession := func(fn func(session interfaces.Session, w http.ResponseWriter, r *http.Request)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session, err := manager.GetSession(chi.URLParam(r, "id"))
			if err != nil {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			fn(session, w, r)
		}
	}

	router.Get("/api/sessions/{id}", withSession(func(session interfaces.Session, w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, session.Snapshot())
	}))

	router.Delete("/api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := manager.RemoveSession(chi.URLParam(r, "id")); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	router.Post("/api/sessions/{id}/choice", withSession(func(session interfaces.Session, w http.ResponseWriter, r *http.Request) {
		var req struct {
			ChoiceID string `json:"choice_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		if err := session.SelectChoice(req.ChoiceID); err != nil {
			writeActionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, session.Snapshot())
	}))

	router.Post("/api/sessions/{id}/reflection", withSession(func(session interfaces.Session, w http.ResponseWriter, r *http.Request) {
		var req struct {
			Answer int `json:"answer"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		if err := session.SetReflectionAnswer(req.Answer); err != nil {
			writeActionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, session.Snapshot())
	}))

	router.Post("/api/sessions/{id}/confirm", withSession(func(session interfaces.Session, w http.ResponseWriter, r *http.Request) {
		if err := session.Confirm(); err != nil {
			writeActionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, session.Snapshot())
	}))

	router.Post("/api/sessions/{id}/reset", withSession(func(session interfaces.Session, w http.ResponseWriter, r *http.Request) {
		session.Reset()
		writeJSON(w, http.StatusOK, session.Snapshot())
	}))

	router.Get("/api/sessions/{id}/report", withSession(func(session interfaces.Session, w http.ResponseWriter, r *http.Request) {
		var student *types.StudentSession
		var err error
		if studentID := r.URL.Query().Get("student_id"); studentID != "" {
			student, err = students.Get(studentID)
			if err != nil {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
		}

		doc, err := report.Build(session.Snapshot(), student)
		if err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		data, err := doc.JSON()
		if err != nil {
			logger.Error("Failed to render report",
				zap.String("session_id", session.ID()),
				zap.Error(err))
			http.Error(w, "Failed to render report", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename()))
		w.Write(data)
	}))

	// Student onboarding endpoints
	router.Post("/api/students", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			FullName string `json:"full_name"`
			Email    string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		student, err := students.Register(req.FullName, req.Email)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, student)
	})

	router.Get("/api/students", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, students.List())
	})

	router.Get("/api/students/{id}", func(w http.ResponseWriter, r *http.Request) {
		student, err := students.Get(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, student)
	})

	// Create HTTP server
	return &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeActionError maps session action errors to HTTP statuses: phase and
// requirement violations are conflicts, unknown IDs and bad answers are
// client errors.
func writeActionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrChoiceNotFound),
		errors.Is(err, game.ErrAnswerOutOfRange),
		errors.Is(err, game.ErrNoReflectionPrompt):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, game.ErrInvalidPhase),
		errors.Is(err, game.ErrRequirementsNotMet),
		errors.Is(err, game.ErrReflectionRequired):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func waitForShutdown(logger *zap.Logger) {
	// Set up channel for shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	sig := <-sigChan
	logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	// Perform cleanup
	logger.Info("Shutting down")
}
