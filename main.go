package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/0xcafe-io/iz"
	"github.com/fatali-fataliyev/expense_sync/api"
	"github.com/fatali-fataliyev/expense_sync/internal/config"
	"github.com/fatali-fataliyev/expense_sync/internal/connectivity"
	"github.com/fatali-fataliyev/expense_sync/internal/remote"
	"github.com/fatali-fataliyev/expense_sync/internal/storage"
	"github.com/fatali-fataliyev/expense_sync/internal/tracker"
	"github.com/fatali-fataliyev/expense_sync/logging"
	"github.com/rs/cors"
)

var corsConf = cors.New(cors.Options{
	AllowedOrigins:   []string{"*"},
	AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	AllowedHeaders:   []string{"Authorization", "Content-Type"},
	AllowCredentials: true,
})

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("failed to load configuration:", err)
		return
	}

	if err := logging.Init(cfg.LogLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return
	}

	logging.Logger.Info("application starting...")

	kv, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		logging.Logger.Errorf("failed to initialize local store: %v", err)
		return
	}
	defer kv.Close()

	remoteClient := remote.NewClient(cfg.RemoteBaseURL)

	probeAddr := cfg.ProbeAddr
	if probeAddr == "" {
		probeAddr = probeAddrFromURL(cfg.RemoteBaseURL)
	}
	monitor := connectivity.NewMonitor(connectivity.DialChecker(probeAddr, cfg.ProbeTimeout))

	service := tracker.New(kv, remoteClient, monitor)

	// Reconnect listener: replay everything still awaiting confirmation.
	// The replay runs on its own goroutine so a transition observed during a
	// mutation's gate check never blocks that mutation.
	monitor.Subscribe(func(online bool) {
		if !online {
			logging.Logger.Info("connectivity lost, mutations will queue locally")
			return
		}
		logging.Logger.Info("connectivity restored, replaying pending records")
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			service.ReplayPending(ctx)
		}()
	})

	// The probe ticker drives transition events between mutations.
	go func() {
		ticker := time.NewTicker(cfg.ProbeInterval)
		defer ticker.Stop()
		for range ticker.C {
			monitor.Refresh()
		}
	}()

	if monitor.IsOnline() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if err := service.PullRemote(ctx); err != nil {
			logging.Logger.Warnf("initial pull from remote failed: %v", err)
		}
		cancel()
	}

	server := http.NewServeMux()
	handlers := api.NewApi(service)

	// EXPENSE ENDPOINTS.
	server.HandleFunc("POST /api/expense", iz.Bind(handlers.SaveExpenseHandler))              // Create Expense
	server.HandleFunc("GET /api/expense", iz.Bind(handlers.GetExpensesHandler))               // List Expenses
	server.HandleFunc("PUT /api/expense/{id}", iz.Bind(handlers.UpdateExpenseHandler))        // Update Expense
	server.HandleFunc("DELETE /api/expense/{id}", iz.Bind(handlers.DeleteExpenseHandler))     // Delete Expense
	server.HandleFunc("POST /api/expense/{id}/retry", iz.Bind(handlers.RetryExpenseHandler))  // Retry failed sync

	// BUDGET ENDPOINTS.
	server.HandleFunc("GET /api/budget", iz.Bind(handlers.GetBudgetHandler))                 // Current month budget
	server.HandleFunc("PUT /api/budget", iz.Bind(handlers.SetBudgetHandler))                 // Set month budget
	server.HandleFunc("GET /api/budget/summary", iz.Bind(handlers.GetBudgetSummaryHandler))  // Spend, remaining, allowance

	// BILL ENDPOINTS.
	server.HandleFunc("POST /api/bill", iz.Bind(handlers.SaveBillHandler))            // Create Bill
	server.HandleFunc("GET /api/bill", iz.Bind(handlers.GetBillsHandler))             // List Bills
	server.HandleFunc("POST /api/bill/{id}/pay", iz.Bind(handlers.PayBillHandler))    // Mark paid (+ successor)
	server.HandleFunc("DELETE /api/bill/{id}", iz.Bind(handlers.DeleteBillHandler))   // Delete Bill

	// RECURRING TEMPLATE ENDPOINTS.
	server.HandleFunc("POST /api/recurring", iz.Bind(handlers.SaveTemplateHandler))                // Create Template
	server.HandleFunc("GET /api/recurring", iz.Bind(handlers.GetTemplatesHandler))                 // List Templates
	server.HandleFunc("POST /api/recurring/{id}/toggle", iz.Bind(handlers.ToggleTemplateHandler))  // Pause/Resume
	server.HandleFunc("POST /api/recurring/process", iz.Bind(handlers.ProcessTemplatesHandler))    // Generate due expenses
	server.HandleFunc("DELETE /api/recurring/{id}", iz.Bind(handlers.DeleteTemplateHandler))       // Delete Template

	// SYNC ENDPOINTS.
	server.HandleFunc("GET /api/sync", iz.Bind(handlers.GetSyncStatusHandler))     // Status counts
	server.HandleFunc("POST /api/sync/replay", iz.Bind(handlers.ReplayHandler))    // Replay pending/failed
	server.HandleFunc("POST /api/sync/pull", iz.Bind(handlers.PullHandler))        // Merge mirror into local

	port := cfg.AppPort
	if port == "" {
		logging.Logger.Info("APP_PORT environment variable not set, using default port 8080")
		port = "8080"
	}
	fmt.Println("Starting server on port: ", port)
	handlerWithCors := corsConf.Handler(server)
	err = http.ListenAndServe(":"+port, handlerWithCors) // Start the server
	if err != nil {
		logging.Logger.Errorf("failed to start server: %v", err)
		return
	}
}

func probeAddrFromURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return raw
	}
	if parsed.Port() != "" {
		return parsed.Host
	}
	if parsed.Scheme == "https" {
		return parsed.Host + ":443"
	}
	return parsed.Host + ":80"
}
