package container

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"speclens/adapters/export"
	"speclens/adapters/llm"
	"speclens/adapters/memory"
	"speclens/adapters/postgres"
	"speclens/ai"
	"speclens/app"
	"speclens/domain/checklist"
	"speclens/internal/config"
	"speclens/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Scoring components
	Library  *checklist.Library
	Prompts  *ai.PromptManager
	Provider ports.CompletionProvider
	Auditor  ports.ContextualAuditor

	// Persistence and output
	ReportRepo ports.ReportRepository
	Exporters  map[string]ports.ReportExporter

	// Services
	AuditService *app.AuditService
}

// New creates a fully wired container backed by in-memory storage. Callers
// that have a database call InitWithDatabase afterwards to swap in the
// durable repository.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
	}

	if err := c.initChecklist(); err != nil {
		return nil, fmt.Errorf("failed to initialize checklist library: %w", err)
	}
	if err := c.initContextual(); err != nil {
		return nil, fmt.Errorf("failed to initialize contextual evaluator: %w", err)
	}
	c.initExporters()

	c.ReportRepo = memory.NewReportRepository()
	c.initAuditService()

	return c, nil
}

// InitWithDatabase swaps persistence over to Postgres
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.DB = db
	c.ReportRepo = postgres.NewReportRepository(db)
	c.initAuditService()

	log.Printf("[Container] Report storage switched to Postgres")
	return nil
}

// initChecklist loads the embedded checklist or an operator-supplied file
func (c *Container) initChecklist() error {
	if path := c.Config.Audit.ChecklistFile; path != "" {
		lib, err := checklist.LoadFile(path)
		if err != nil {
			return err
		}
		c.Library = lib
		log.Printf("[Container] Checklist %s loaded from %s (%d rules)", lib.Version(), path, len(lib.Rules()))
		return nil
	}

	lib, err := checklist.Default()
	if err != nil {
		return err
	}
	c.Library = lib
	log.Printf("[Container] Embedded checklist %s loaded (%d rules)", lib.Version(), len(lib.Rules()))
	return nil
}

// initContextual selects the completion provider and builds the auditor
func (c *Container) initContextual() error {
	c.Prompts = ai.NewPromptManager(c.Config.AI.PromptsDir)

	if !c.Config.ContextualEnabled() {
		c.Auditor = llm.NewDisabledAuditor()
		log.Printf("[Container] Contextual evaluation disabled - no provider configured")
		return nil
	}

	var provider ports.CompletionProvider
	switch c.Config.AI.Provider {
	case config.ProviderOpenAI:
		provider = ai.NewOpenAIProviderWithClient(c.Config.AI.OpenAIModel, c.Config.AI.OpenAIKey, c.Config.AI.OpenAIBaseURL, nil)
	case config.ProviderGemini:
		provider = ai.NewGeminiProviderWithClient(c.Config.AI.GeminiModel, c.Config.AI.GeminiKey, c.Config.AI.GeminiBaseURL, nil)
	default:
		return fmt.Errorf("unknown AI provider: %s", c.Config.AI.Provider)
	}

	c.Provider = ai.NewResilientProvider(provider, c.Config.AI.MaxRetries, c.Config.AI.Timeout)
	c.Auditor = llm.NewContextualAuditor(c.Provider, c.Prompts, c.Config.AI.Temperature, c.Config.AI.MaxTokens)
	log.Printf("[Container] Contextual evaluation enabled - provider=%s", provider.ID())
	return nil
}

func (c *Container) initExporters() {
	c.Exporters = map[string]ports.ReportExporter{}
	for _, e := range []ports.ReportExporter{export.NewJSONExporter(), export.NewXLSXExporter()} {
		c.Exporters[e.Format()] = e
	}
}

func (c *Container) initAuditService() {
	c.AuditService = app.NewAuditService(c.Library, c.Auditor, c.ReportRepo, app.AuditServiceOptions{
		StrictContextual: c.Config.Audit.StrictContextual,
		TruncateChars:    c.Config.Audit.TruncateChars,
		MaxDocumentBytes: c.Config.Audit.MaxDocumentBytes,
		MaxConcurrent:    c.Config.Audit.MaxConcurrent,
	})
}

// Exporter returns the exporter registered for a format
func (c *Container) Exporter(format string) (ports.ReportExporter, bool) {
	e, ok := c.Exporters[format]
	return e, ok
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
