package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	tea "github.com/charmbracelet/bubbletea"
)

type ConsoleConfig struct {
	APIBaseURL string        `env:"API_BASE_URL" envDefault:"http://localhost:3000"`
	AdminToken string        `env:"ADMIN_TOKEN"`
	Timeout    time.Duration `env:"CONSOLE_TIMEOUT" envDefault:"30s"`
}

func main() {
	cfg := &ConsoleConfig{}
	if err := env.Parse(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API at %s. Please ensure the bot is running.\n", cfg.APIBaseURL)
		os.Exit(1)
	}
	if cfg.AdminToken == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_TOKEN not set: /attack and /reset will be refused.")
	}

	api := &apiClient{client: client, baseURL: cfg.APIBaseURL, adminToken: cfg.AdminToken}
	p := tea.NewProgram(NewConsoleUI(api),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
