package cmd

import (
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jjenkins/pincode/internal/config"
	"github.com/jjenkins/pincode/internal/handlers"
	"github.com/jjenkins/pincode/internal/service"
	"github.com/jjenkins/pincode/internal/view"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pincode lookup web server",
	Long: `Start the web server with the pincode lookup form.

Each browser session gets its own form. Lookups run in the background
while the page polls for the result; filtering happens on the server
without fetching again.`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to run the server on")
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := newLogger(cfg)
	client := newClient(cfg)

	db, history, err := openHistory(cfg)
	if err != nil {
		log.Fatalf("Failed to open history: %v", err)
	}

	var recorder service.Recorder
	var appCfg handlers.AppConfig
	opts := []view.Option{view.WithLogger(logger)}
	if history != nil {
		defer db.Close()
		recorder = history
		opts = append(opts, view.WithRecorder(history))
		appCfg.History = history
		appCfg.Metrics = service.NewMetricsService(db)
		logger.Info("lookup history enabled")
	}

	forms := handlers.NewFormRegistry(func() *view.Controller {
		return view.NewController(client, opts...)
	}, cfg.Server.SessionIdle)
	defer forms.Close()

	appCfg.Forms = forms
	appCfg.Looker = client
	appCfg.Recorder = recorder
	appCfg.Logger = logger
	appCfg.AccessLog = true
	app := handlers.NewApp(appCfg)

	ctx, cancel := signalContext()
	defer cancel()

	// Drop forms of sessions that went away
	go func() {
		ticker := time.NewTicker(cfg.Server.SessionIdle / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := forms.Sweep(cfg.Server.SessionIdle); n > 0 {
					logger.Debug("swept idle forms", "count", n)
				}
			}
		}
	}()

	go func() {
		<-ctx.Done()
		log.Println("Received interrupt signal, shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("shutdown failed", "error", err.Error())
		}
	}()

	port := listenPort(cmd, cfg)
	log.Printf("Starting server on :%s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// listenPort prefers an explicit --port over PORT from the environment
func listenPort(cmd *cobra.Command, cfg *config.Config) string {
	if cmd.Flags().Changed("port") {
		if port, err := cmd.Flags().GetString("port"); err == nil {
			return port
		}
	}
	return cfg.Server.Port
}
