package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/mauv0809/expansion-radar/internal/config"
	"github.com/mauv0809/expansion-radar/internal/dashboard"
	"github.com/mauv0809/expansion-radar/internal/logging"
	"github.com/mauv0809/expansion-radar/internal/tui"
)

func main() {
	configPath := flag.String("config", envOr("CONFIG_PATH", "config.yaml"), "path to config file")
	baseURL := flag.String("url", "", "dashboard server URL (overrides RADAR_URL)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		cfg.Client.BaseURL = *baseURL
	}

	// The alt screen owns the terminal, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if path := os.Getenv("RADAR_DEBUG_LOG"); path != "" {
		f, err := tea.LogToFile(path, "radar")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	} else {
		log.SetOutput(io.Discard)
	}
	logger := logging.Setup(cfg.Log.Level, logOut)
	logger.Info("starting radar client", "url", cfg.Client.BaseURL)

	client := dashboard.NewClient(cfg.Client.BaseURL, &http.Client{Timeout: 20 * time.Second})

	p := tea.NewProgram(tui.New(client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
