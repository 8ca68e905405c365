package agent

import (
	"strings"
	"testing"

	"github.com/tieubaoca/medguide-be/types"
)

func TestPageExtractionPrompt(t *testing.T) {
	prompt := PageExtractionPrompt(3, "Glucose 110 mg/dL")
	if !strings.Contains(prompt, "Page 3") {
		t.Error("prompt missing page number")
	}
	if !strings.Contains(prompt, "Glucose 110 mg/dL") {
		t.Error("prompt missing page text")
	}
}

func TestPageAnalysisPrompt(t *testing.T) {
	prompt := PageAnalysisPrompt(2, "HbA1c 6.1%")
	if !strings.Contains(prompt, "Page 2") {
		t.Error("prompt missing page number")
	}
	if !strings.Contains(prompt, "HbA1c 6.1%") {
		t.Error("prompt missing page text")
	}
}

func TestFinalReportPromptIncludesMergedAnalyses(t *testing.T) {
	merged := "page one findings" + PageBreakMarker + "page two findings"
	prompt := FinalReportPrompt(merged)
	if !strings.Contains(prompt, "page one findings") || !strings.Contains(prompt, "page two findings") {
		t.Error("prompt missing merged analyses")
	}
	if !strings.Contains(prompt, PageBreakMarker) {
		t.Error("page break marker must survive into the prompt")
	}
}

func TestChatPromptsCarryRefusalMessage(t *testing.T) {
	weak := WeakContextPrompt("what is TSH", "some context", []string{"nih.gov"})
	strong := StrongContextPrompt("what is TSH", "some context")

	for name, prompt := range map[string]string{"weak": weak, "strong": strong} {
		if !strings.Contains(prompt, RefusalMessage) {
			t.Errorf("%s prompt missing the refusal sentence", name)
		}
		if !strings.Contains(prompt, "what is TSH") {
			t.Errorf("%s prompt missing the query", name)
		}
		if !strings.Contains(prompt, "some context") {
			t.Errorf("%s prompt missing the context", name)
		}
	}
}

func TestWeakContextPromptListsDomains(t *testing.T) {
	domains := []string{"nih.gov", "mayoclinic.org", "medlineplus.gov"}
	prompt := WeakContextPrompt("q", "", domains)
	for _, d := range domains {
		if !strings.Contains(prompt, d) {
			t.Errorf("weak prompt missing domain %s", d)
		}
	}
}

func TestAgentSystemPrompts(t *testing.T) {
	for _, cfg := range []types.AgentConfig{PageExtractor, PageAnalyzer, FinalReport, Chat} {
		if cfg.SystemPrompt() == "" {
			t.Errorf("%s agent has an empty system prompt", cfg.Name)
		}
	}
}
