package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"shuzhai/internal/config"
	"shuzhai/internal/gateway/supabase"
	"shuzhai/internal/log"
	"shuzhai/internal/store"
	"shuzhai/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	// Handle version flag
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Parse()

	if showVersion {
		fmt.Printf("shuzhai %s\n", Version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A local .env can carry SUPABASE_URL / SUPABASE_ANON_KEY in development
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting shuzhai", "version", Version)

	if !cfg.IsConfigured() {
		return runSetupFlow(cfg, logger)
	}

	st, err := store.Open(config.DefaultDataPath())
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	defer st.Close()

	gateway := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.AnonKey, logger)

	model := tui.NewModel(cfg, gateway, st, logger)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runSetupFlow handles the initial setup when not configured
func runSetupFlow(cfg *config.Config, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to shuzhai!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	var projectURL, anonKey string
	for {
		fmt.Print("Enter your Supabase project URL (e.g., https://xyz.supabase.co): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		projectURL = strings.TrimSpace(input)
		if projectURL == "" {
			fmt.Println("Project URL cannot be empty. Please try again.")
			continue
		}
		break
	}

	for {
		fmt.Print("Enter the project's anon key: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		anonKey = strings.TrimSpace(input)
		if anonKey == "" {
			fmt.Println("Anon key cannot be empty. Please try again.")
			continue
		}
		break
	}

	cfg.Supabase.URL = projectURL
	cfg.Supabase.AnonKey = anonKey

	// Optional owner sign-in, just to validate credentials and remember
	// the email. The session itself is established per run from the TUI.
	fmt.Print("Owner email (leave blank to browse anonymously): ")
	input, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	email := strings.TrimSpace(input)

	if email != "" {
		fmt.Print("Password: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}

		gateway := supabase.NewClient(projectURL, anonKey, logger)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		session, err := gateway.SignIn(ctx, email, string(password))
		if err != nil {
			return fmt.Errorf("sign-in failed: %w", err)
		}
		cfg.Supabase.Email = session.Email
		fmt.Println("✓ Signed in as " + session.Email)
	}

	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run shuzhai again to start the application.")

	return nil
}
