package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"speclens/app"
	"speclens/domain/audit"
	"speclens/domain/document"
	"speclens/internal/config"
	"speclens/internal/container"
)

// Exit codes: 0 clean, 1 high-risk result or failed audit, 2 usage error.
const (
	exitRisk  = 1
	exitUsage = 2
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "speclens-cli",
		Short:         "SpecLens CLI for auditing requirement documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newAuditCmd(),
		newChecklistCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitUsage)
	}
}

func newAuditCmd() *cobra.Command {
	var domain string
	var strict bool
	var format string
	var outPath string

	cmd := &cobra.Command{
		Use:   "audit [file]",
		Short: "Audit a requirement document and print its Clarity Score",
		Long: `Audit a requirement document from a file or stdin.

The exit code is 1 when the audit resolves to high risk, so the command
can gate CI pipelines directly.

Examples:
  speclens-cli audit requirements.md
  cat requirements.md | speclens-cli audit --domain api_backend
  speclens-cli audit requirements.md --format xlsx --out report.xlsx`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readDocument(args)
			if err != nil {
				return err
			}

			var strictOverride *bool
			if cmd.Flags().Changed("strict") {
				strictOverride = &strict
			}
			return runAudit(text, domain, strictOverride, format, outPath)
		},
	}

	cmd.Flags().StringVar(&domain, "domain", document.DomainAPIBackend, "Document domain hint")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when the contextual evaluator is unavailable")
	cmd.Flags().StringVar(&format, "format", "summary", "Output format: summary, json, or xlsx")
	cmd.Flags().StringVar(&outPath, "out", "", "Write the report to a file instead of stdout")

	return cmd
}

func newChecklistCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "Print the active deterministic checklist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cont, err := buildContainer()
			if err != nil {
				return err
			}

			desc := cont.Library.Describe()
			if asJSON {
				data, err := json.MarshalIndent(desc, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Printf("Checklist %s\n", desc.Version)
			for _, cat := range desc.Categories {
				fmt.Printf("\n%s (%d points)\n", cat.Title, cat.MaxPoints)
				for _, rule := range cat.Rules {
					fmt.Printf("  %-28s %2d  %s\n", rule.ID, rule.Weight, rule.Message)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the checklist as JSON")
	return cmd
}

func readDocument(args []string) (string, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read document: %w", err)
		}
		return string(data), nil
	}

	stat, err := os.Stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
		return "", fmt.Errorf("no document: pass a file argument or pipe text on stdin")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func buildContainer() (*container.Container, error) {
	// Pick up a local .env when present, stay quiet otherwise.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return container.New(cfg)
}

func runAudit(text, domain string, strictOverride *bool, format, outPath string) error {
	cont, err := buildContainer()
	if err != nil {
		return err
	}

	report, err := cont.AuditService.RunAudit(context.Background(), app.AuditRequest{
		Text:   text,
		Domain: domain,
		Strict: strictOverride,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Audit failed:", err)
		os.Exit(exitRisk)
	}

	switch format {
	case "summary":
		printSummary(report)
	case "json", "xlsx":
		exporter, ok := cont.Exporter(format)
		if !ok {
			return fmt.Errorf("unsupported format: %s", format)
		}
		data, err := exporter.Export(report)
		if err != nil {
			return fmt.Errorf("failed to export report: %w", err)
		}
		path := outPath
		if path == "" && format == "xlsx" {
			path = fmt.Sprintf("audit-%s.xlsx", report.ID)
		}
		if path == "" {
			fmt.Println(string(data))
		} else {
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
		}
	default:
		return fmt.Errorf("unsupported format: %s (use summary, json, or xlsx)", format)
	}

	if report.RiskLevel == audit.RiskHigh {
		os.Exit(exitRisk)
	}
	return nil
}

func printSummary(report *audit.Report) {
	fmt.Printf("\n=== CLARITY REPORT %s ===\n", report.ID)
	fmt.Printf("Score:      %d/100 (%s risk)\n", report.ClarityScore, report.RiskLevel)
	fmt.Printf("Contextual: %s", report.ContextualStatus)
	if report.ContextualModel != "" {
		fmt.Printf(" (%s)", report.ContextualModel)
	}
	fmt.Println()
	fmt.Printf("Checklist:  %s / engine %s\n", report.ChecklistVersion, report.EngineVersion)

	fmt.Printf("\n--- Category Scores ---\n")
	for _, cs := range report.CategoryScores {
		fmt.Printf("%-26s %3d/%d (det %.1f, ctx %.1f)\n", cs.Title, cs.Blended, cs.MaxPoints, cs.Deterministic, cs.Contextual)
	}

	if len(report.Findings) > 0 {
		fmt.Printf("\n--- Findings (%d) ---\n", len(report.Findings))
		for _, f := range report.Findings {
			line := fmt.Sprintf("[%s] %s: %s", strings.ToUpper(string(f.Severity)), f.Category, f.Message)
			fmt.Println(line)
			if f.SuggestedRewrite != "" {
				fmt.Printf("  rewrite: %s\n", f.SuggestedRewrite)
			}
		}
	}

	if len(report.AcceptanceCriteria) > 0 {
		fmt.Printf("\n--- Acceptance Criteria ---\n")
		for i, c := range report.AcceptanceCriteria {
			fmt.Printf("%d. Given %s, when %s, then %s\n", i+1, c.Given, c.When, c.Then)
		}
	}

	if report.ExecutiveSummary != "" {
		fmt.Printf("\n--- Summary ---\n%s\n", report.ExecutiveSummary)
	}
}
