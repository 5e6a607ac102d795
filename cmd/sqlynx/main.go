package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sqlynx/sqlynx/internal/app"
	"github.com/sqlynx/sqlynx/internal/config"
	"github.com/sqlynx/sqlynx/internal/database"
	"github.com/sqlynx/sqlynx/internal/database/mysql"
	"github.com/sqlynx/sqlynx/internal/database/postgres"
	"github.com/sqlynx/sqlynx/internal/index"
	"github.com/sqlynx/sqlynx/internal/nl2sql"
	"github.com/sqlynx/sqlynx/internal/tui"
)

func main() {
	rebuild := flag.Bool("rebuild-index", false, "rebuild the schema index even if one exists")
	topK := flag.Int("top-k", 0, "number of tables retrieved per question (overrides SQLYNX_TOP_K)")
	saveKey := flag.String("save-key", "", "store a Gemini API key in the OS keyring and exit")
	flag.Parse()

	if *saveKey != "" {
		if err := config.StoreAPIKey(*saveKey); err != nil {
			log.Fatalf("Failed to store API key: %v", err)
		}
		fmt.Println("API key stored.")
		return
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *topK > 0 {
		cfg.TopK = *topK
	}

	dsn, err := cfg.DB.DSN()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	driver := newDriver(cfg.DB.Scheme)

	ctx := context.Background()

	generator, err := nl2sql.NewGemini(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	embedder, err := index.NewGenAIEmbedder(ctx, cfg.LLM.APIKey, cfg.LLM.EmbedModel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	ix := index.New(embedder, cfg.IndexDir)

	service := app.NewService(driver, generator, ix, cfg.DB.Scheme, cfg.TopK)

	// Connect before the TUI starts: a database that cannot be reached with
	// the given configuration is fatal, not something to retry interactively.
	if err := service.Connect(ctx, dsn); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	boot := func(ctx context.Context) (int, error) {
		if *rebuild {
			if err := ix.Build(ctx, driver); err != nil {
				return 0, err
			}
			if err := ix.Persist(); err != nil {
				return 0, err
			}
			return ix.Len(), nil
		}
		if err := ix.LoadOrBuild(ctx, driver); err != nil {
			return 0, err
		}
		return ix.Len(), nil
	}

	model := tui.NewModel(service, cfg, boot)
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}

	// Graceful cleanup
	_ = service.Disconnect()
}

// newDriver picks the driver for a supported scheme. Schemes outside the
// supported set never get here: FromEnv rejects them first.
func newDriver(scheme config.Scheme) database.Driver {
	switch scheme {
	case config.SchemeMySQL:
		return mysql.New()
	default:
		return postgres.New()
	}
}
