package ai_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"speclens/ai"
)

func TestPromptManagerLoadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	content := "Audit {DOCUMENT} for {DOMAIN}."
	if err := os.WriteFile(filepath.Join(dir, "custom.txt"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	pm := ai.NewPromptManager(dir)
	rendered, err := pm.RenderPrompt("custom", map[string]string{
		"DOCUMENT": "the text",
		"DOMAIN":   "api_backend",
	})
	if err != nil {
		t.Fatalf("RenderPrompt: %v", err)
	}
	if rendered != "Audit the text for api_backend." {
		t.Errorf("rendered = %q", rendered)
	}
}

func TestPromptManagerFallsBackToEmbedded(t *testing.T) {
	pm := ai.NewPromptManager(t.TempDir())

	tmpl, err := pm.LoadPrompt("contextual_audit")
	if err != nil {
		t.Fatalf("LoadPrompt: %v", err)
	}
	for _, placeholder := range []string{"{DOCUMENT}", "{DOMAIN}", "{SCHEMA}"} {
		if !strings.Contains(tmpl, placeholder) {
			t.Errorf("embedded template missing %s", placeholder)
		}
	}

	repair, err := pm.LoadPrompt("contextual_repair")
	if err != nil {
		t.Fatalf("LoadPrompt repair: %v", err)
	}
	for _, placeholder := range []string{"{ERROR}", "{PREVIOUS}", "{SCHEMA}"} {
		if !strings.Contains(repair, placeholder) {
			t.Errorf("repair template missing %s", placeholder)
		}
	}
}

func TestPromptManagerDiskOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "contextual_audit.txt"), []byte("override {SCHEMA}"), 0o644); err != nil {
		t.Fatal(err)
	}

	pm := ai.NewPromptManager(dir)
	tmpl, err := pm.LoadPrompt("contextual_audit")
	if err != nil {
		t.Fatalf("LoadPrompt: %v", err)
	}
	if tmpl != "override {SCHEMA}" {
		t.Errorf("disk override not used: %q", tmpl)
	}
}

func TestPromptManagerUnknownTemplate(t *testing.T) {
	pm := ai.NewPromptManager(t.TempDir())
	if _, err := pm.LoadPrompt("does_not_exist"); err == nil {
		t.Fatal("expected error for unknown template")
	}
}
