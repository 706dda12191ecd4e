package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"cfglens/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize cfglens configuration interactively",
	Long: `Guides you through setting up cfglens configuration step by step.
Creates a config file with output format, concurrency and cache settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func runInit() error {
	// === SECTION 1: Output ===
	var formatChoice string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default output format").
				Description("How graphs are rendered when no --format flag is given").
				Options(
					huh.NewOption("Mermaid diagram", "mermaid"),
					huh.NewOption("JSONL records", "jsonl"),
					huh.NewOption("JSON document", "json"),
				).
				Value(&formatChoice),
		),
	)
	err := form.Run()
	if err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 2: Analysis ===
	concurrencyInput := strconv.Itoa(config.DefaultConfig().Concurrency)
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Analysis concurrency").
				Description("How many functions to analyze in parallel").
				Placeholder(concurrencyInput).
				Value(&concurrencyInput).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil {
						return fmt.Errorf("not a number: %s", s)
					}
					if n < 1 {
						return fmt.Errorf("must be at least 1")
					}
					return nil
				}),
		),
	)
	err = form.Run()
	if err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 3: Cache ===
	var cacheEnabled bool
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Analysis cache").
				Description("Reuse results for files that have not changed?").
				Affirmative("Enable cache").
				Negative("Disable cache").
				Value(&cacheEnabled),
		),
	)
	err = form.Run()
	if err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	cachePath := ""
	if cacheEnabled {
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Cache file path (press Enter for default)").
					Placeholder(".cfglens/analysis.cache").
					Value(&cachePath),
			),
		)
		err = form.Run()
		if err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
	}

	// === SECTION 4: Config Location ===
	var saveLocationChoice string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Save Configuration").
				Description("Where to save the configuration file?").
				Options(
					huh.NewOption("Global (~/.cfglens/config.yaml)", "global"),
					huh.NewOption("Project (./.cfglens/config.yaml)", "project"),
				).
				Value(&saveLocationChoice),
		),
	)
	err = form.Run()
	if err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	var configPath string
	if saveLocationChoice == "global" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}
		configPath = filepath.Join(home, ".cfglens", "config.yaml")
	} else {
		configPath = filepath.Join(".cfglens", "config.yaml")
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config file exists").
					Description(fmt.Sprintf("Overwrite existing config at %s?", configPath)).
					Affirmative("Overwrite").
					Negative("Cancel").
					Value(&overwrite),
			),
		)
		err = form.Run()
		if err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	// === Build config struct ===
	cfg := config.DefaultConfig()
	cfg.Format = config.OutputFormat(formatChoice)
	cfg.Concurrency, _ = strconv.Atoi(concurrencyInput)
	cfg.CacheEnabled = cacheEnabled
	if cachePath != "" {
		cfg.CachePath = cachePath
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Show config preview
	fmt.Println("\n=== Configuration Preview ===")
	fmt.Printf("Config path: %s\n", configPath)
	fmt.Printf("Format: %s\n", cfg.Format)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	if cfg.CacheEnabled {
		fmt.Printf("Cache: enabled (%s)\n", cfg.EffectiveCachePath())
	} else {
		fmt.Println("Cache: disabled")
	}
	fmt.Println("================================")

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Configuration saved to: %s\n", configPath)
	return nil
}

func init() {
	RootCmd.AddCommand(initCmd)
}
