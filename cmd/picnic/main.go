package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/picnichood/picnic-cli/internal/api"
	"github.com/picnichood/picnic-cli/internal/cart"
	"github.com/picnichood/picnic-cli/internal/config"
	"github.com/picnichood/picnic-cli/internal/logging"
	"github.com/picnichood/picnic-cli/internal/session"
	"github.com/picnichood/picnic-cli/internal/state"
	"github.com/picnichood/picnic-cli/internal/ui"
)

const version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:   "picnic",
	Short: "PicnicHood neighborhood grocery client",
	Long: `picnic is the terminal client for PicnicHood: browse the catalog,
fill your cart, join a nearby community, vote on a shared delivery
slot and place orders.

Configuration comes from the environment (or a .env file):
  PICNIC_API_URL    API origin (defaults to the production API)
  PICNIC_STATE_DIR  local state directory (defaults to ~/.picnic)
  PICNIC_LAT        your latitude, used to find nearby communities
  PICNIC_LON        your longitude
  PICNIC_LOG_LEVEL  debug, info, warn or error`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClient()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("picnic " + version)
	},
}

func runClient() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The terminal UI owns stdout, so logs go to a file in the state dir.
	logFile, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	log := logging.New(logFile, cfg.LogLevel)
	// Anything logging through slog.Default must also land in the file,
	// never on the terminal the UI is drawing on.
	slog.SetDefault(log)

	db, err := state.Open(cfg.StatePath())
	if err != nil {
		return err
	}

	sess, err := session.New(db)
	if err != nil {
		return err
	}

	basket := cart.New(db, log)
	if err := basket.Load(); err != nil {
		log.Warn("cart_restore_failed", "error", err)
	}

	deps := &ui.Deps{
		Config:  cfg,
		API:     api.NewClient(cfg.BaseURL, sess),
		Session: sess,
		Cart:    basket,
		Log:     log,
	}

	log.Info("client_start", "version", version, "base_url", cfg.BaseURL)
	program := tea.NewProgram(ui.New(deps), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	log.Info("client_stop")
	return nil
}

func main() {
	rootCmd.AddCommand(versionCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
