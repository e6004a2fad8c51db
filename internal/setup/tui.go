package setup

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/vadiminshakov/coinboard/config"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

const wizardTitle = "COINBOARD CONFIG WIZARD"

// Answers values collected by the wizard.
type Answers struct {
	Addr        string
	CatalogSize string
	Seed        string
	Storage     string
	RedisAddr   string
	RedisPass   string
	JournalDir  string
	LogLevel    string
}

// DefaultAnswers prefilled wizard values.
func DefaultAnswers() Answers {
	d := config.Defaults()
	return Answers{
		Addr:        d.HTTP.Addr,
		CatalogSize: strconv.Itoa(d.Catalog.Size),
		Seed:        strconv.FormatUint(d.Catalog.Seed, 10),
		Storage:     d.Storage.Backend,
		RedisAddr:   d.Storage.RedisAddr,
		JournalDir:  d.Journal.Dir,
		LogLevel:    d.Log.Level,
	}
}

// ToConfig converts the answers into raw config, validating them on the way.
func (a Answers) ToConfig() (config.ConfigTmp, error) {
	cfg := config.Defaults()

	size, err := strconv.Atoi(strings.TrimSpace(a.CatalogSize))
	if err != nil {
		return cfg, fmt.Errorf("catalog size must be an integer: %w", err)
	}
	seed, err := strconv.ParseUint(strings.TrimSpace(a.Seed), 10, 64)
	if err != nil {
		return cfg, fmt.Errorf("seed must be a non-negative integer: %w", err)
	}

	cfg.HTTP.Addr = strings.TrimSpace(a.Addr)
	cfg.Catalog.Size = size
	cfg.Catalog.Seed = seed
	cfg.Storage.Backend = a.Storage
	if a.Storage == config.StorageRedis {
		cfg.Storage.RedisAddr = strings.TrimSpace(a.RedisAddr)
		cfg.Storage.RedisPassword = a.RedisPass
	}
	if dir := strings.TrimSpace(a.JournalDir); dir != "" {
		cfg.Journal.Dir = dir
	} else {
		cfg.Journal.Disabled = true
	}
	cfg.Log.Level = a.LogLevel

	if _, err := cfg.Build(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func screen(step string) {
	fmt.Print("\033[H\033[2J") // clear screen
	fmt.Println(headerStyle.Render(wizardTitle))
	fmt.Println(stepStyle.Render(step))
}

// RunTUI launches the terminal configuration wizard and returns the path of the written config.
func RunTUI() (string, error) {
	a := DefaultAnswers()
	var confirm bool

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render(wizardTitle))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Set up your market dashboard.\n"))

	fmt.Println(stepStyle.Render("STEP 1: SERVER"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listen address").
				Description("host:port for the HTTP API (e.g. :8000)").
				Value(&a.Addr).
				Validate(func(s string) error {
					if !strings.Contains(s, ":") {
						return fmt.Errorf("address must contain a port, e.g. :8000")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Log level").
				Options(
					huh.NewOption("Debug", "debug"),
					huh.NewOption("Info", "info"),
					huh.NewOption("Warn", "warn"),
					huh.NewOption("Error", "error"),
				).
				Value(&a.LogLevel),
		),
	).Run()
	if err != nil {
		return "", err
	}

	screen("STEP 2: MARKET CATALOG")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Catalog size").
				Description("Number of simulated assets (the dashboard shows the top 200)").
				Value(&a.CatalogSize).
				Validate(validatePositive),
			huh.NewInput().
				Title("Seed").
				Description("Same seed, same catalog").
				Value(&a.Seed).
				Validate(func(s string) error {
					_, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
					return err
				}),
		),
	).Run()
	if err != nil {
		return "", err
	}

	screen("STEP 3: STORAGE")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where should watchlists live?").
				Options(
					huh.NewOption("In memory (lost on restart)", config.StorageMemory),
					huh.NewOption("Redis", config.StorageRedis),
				).
				Value(&a.Storage),
			huh.NewInput().
				Title("Change journal directory").
				Description("Leave empty to disable the journal").
				Value(&a.JournalDir),
		),
	).Run()
	if err != nil {
		return "", err
	}

	if a.Storage == config.StorageRedis {
		screen("STEP 4: REDIS")
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Redis address").
					Value(&a.RedisAddr),
				huh.NewInput().
					Title("Redis password").
					Value(&a.RedisPass).
					EchoMode(huh.EchoModePassword),
			),
		).Run()
		if err != nil {
			return "", err
		}
	}

	screen("FINAL CONFIRMATION")

	summary := fmt.Sprintf(
		"Address: %s\nCatalog: %s assets (seed %s)\nStorage: %s\nJournal: %s\nLog level: %s\n",
		a.Addr, a.CatalogSize, a.Seed, a.Storage, a.JournalDir, a.LogLevel,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return "", err
	}
	if !confirm {
		return "", fmt.Errorf("setup cancelled by user")
	}

	cfg, err := a.ToConfig()
	if err != nil {
		return "", err
	}
	if err := cfg.Write(config.GeneratedPath); err != nil {
		return "", fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(
		fmt.Sprintf("\n✓ Configuration saved to %s\nStarting dashboard...", config.GeneratedPath)))
	time.Sleep(1500 * time.Millisecond) // small pause to read success message

	return config.GeneratedPath, nil
}

func validatePositive(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a whole number")
	}
	if n <= 0 {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}
