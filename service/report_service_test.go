package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/tieubaoca/medguide-be/agent"
	"github.com/tieubaoca/medguide-be/types"
)

type fakeAI struct {
	mu    sync.Mutex
	calls []string
	chat  func(cfg types.AgentConfig, messages []types.Message) (string, error)
}

func (f *fakeAI) Chat(ctx context.Context, cfg types.AgentConfig, messages []types.Message) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cfg.Name)
	f.mu.Unlock()
	return f.chat(cfg, messages)
}

func (f *fakeAI) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

type fakePages struct {
	pages []types.PageText
	err   error
}

func (f *fakePages) ExtractPages(filePath string) ([]types.PageText, error) {
	return f.pages, f.err
}

func (f *fakePages) TruncatePage(text string) string {
	return text
}

func writeTempPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatalf("failed to write temp pdf: %v", err)
	}
	return path
}

func echoAI() *fakeAI {
	return &fakeAI{
		chat: func(cfg types.AgentConfig, messages []types.Message) (string, error) {
			return cfg.Name + " output", nil
		},
	}
}

func TestAnalyzeReportSuccess(t *testing.T) {
	pages := &fakePages{pages: []types.PageText{
		{Page: 1, Content: "glucose 110 mg/dL"},
		{Page: 2, Content: "hemoglobin 13.5 g/dL"},
		{Page: 3, Content: "cholesterol 190 mg/dL"},
	}}
	ai := echoAI()
	outDir := filepath.Join(t.TempDir(), "outputs")
	svc := NewReportService(ai, pages, outDir, 2, 10)

	result, err := svc.AnalyzeReport(context.Background(), writeTempPDF(t))
	if err != nil {
		t.Fatalf("AnalyzeReport failed: %v", err)
	}
	if len(result.Pages) != 3 {
		t.Fatalf("expected 3 page results, got %d", len(result.Pages))
	}
	for i, r := range result.Pages {
		if r.Page != i+1 {
			t.Errorf("result %d: expected page %d, got %d", i, i+1, r.Page)
		}
		if r.Failed {
			t.Errorf("page %d unexpectedly failed", r.Page)
		}
	}
	if result.FinalReport != "final_report output" {
		t.Errorf("unexpected final report: %q", result.FinalReport)
	}

	for page := 1; page <= 3; page++ {
		pageFile := filepath.Join(outDir, fmt.Sprintf("page_%d.txt", page))
		if _, err := os.Stat(pageFile); err != nil {
			t.Errorf("missing page artifact: %v", err)
		}
	}
	content, err := os.ReadFile(svc.FinalReportPath())
	if err != nil {
		t.Fatalf("missing final report artifact: %v", err)
	}
	if string(content) != "final_report output" {
		t.Errorf("unexpected final report artifact: %q", content)
	}

	if n := ai.callCount(agent.PageExtractor.Name); n != 3 {
		t.Errorf("expected 3 extraction calls, got %d", n)
	}
	if n := ai.callCount(agent.PageAnalyzer.Name); n != 3 {
		t.Errorf("expected 3 analysis calls, got %d", n)
	}
	if n := ai.callCount(agent.FinalReport.Name); n != 1 {
		t.Errorf("expected 1 synthesis call, got %d", n)
	}
}

func TestAnalyzeReportPageFailureGetsPlaceholder(t *testing.T) {
	pages := &fakePages{pages: []types.PageText{
		{Page: 1, Content: "page one values"},
		{Page: 2, Content: "BROKEN-PAGE values"},
		{Page: 3, Content: "page three values"},
	}}
	var mergedPrompt string
	ai := &fakeAI{}
	ai.chat = func(cfg types.AgentConfig, messages []types.Message) (string, error) {
		prompt := messages[len(messages)-1].Content
		switch cfg.Name {
		case agent.PageExtractor.Name:
			return prompt, nil
		case agent.PageAnalyzer.Name:
			if strings.Contains(prompt, "BROKEN-PAGE") {
				return "", fmt.Errorf("model overloaded")
			}
			return "analysis of " + prompt, nil
		default:
			mergedPrompt = prompt
			return "merged report", nil
		}
	}
	outDir := filepath.Join(t.TempDir(), "outputs")
	svc := NewReportService(ai, pages, outDir, 4, 10)

	result, err := svc.AnalyzeReport(context.Background(), writeTempPDF(t))
	if err != nil {
		t.Fatalf("AnalyzeReport failed: %v", err)
	}

	if !result.Pages[1].Failed {
		t.Error("expected page 2 to be marked failed")
	}
	want := "[Page 2] Analysis failed."
	if result.Pages[1].Content != want {
		t.Errorf("expected placeholder %q, got %q", want, result.Pages[1].Content)
	}
	if result.Pages[0].Failed || result.Pages[2].Failed {
		t.Error("healthy pages must not be marked failed")
	}

	// The placeholder still reaches synthesis so the final report knows
	// page 2 is missing.
	if !strings.Contains(mergedPrompt, want) {
		t.Error("placeholder missing from synthesis input")
	}
	if _, err := os.Stat(filepath.Join(outDir, "page_2.txt")); !os.IsNotExist(err) {
		t.Error("failed page must not leave an artifact")
	}
}

func TestAnalyzeReportAllExtractionsFail(t *testing.T) {
	pages := &fakePages{pages: []types.PageText{
		{Page: 1, Content: "something"},
		{Page: 2, Content: "something else"},
	}}
	ai := &fakeAI{
		chat: func(cfg types.AgentConfig, messages []types.Message) (string, error) {
			return "", fmt.Errorf("model unavailable")
		},
	}
	svc := NewReportService(ai, pages, filepath.Join(t.TempDir(), "outputs"), 2, 10)

	if _, err := svc.AnalyzeReport(context.Background(), writeTempPDF(t)); err == nil {
		t.Fatal("expected error when every extraction fails")
	}
}

func TestAnalyzeReportMissingFile(t *testing.T) {
	svc := NewReportService(echoAI(), &fakePages{}, filepath.Join(t.TempDir(), "outputs"), 2, 10)
	if _, err := svc.AnalyzeReport(context.Background(), filepath.Join(t.TempDir(), "nope.pdf")); err == nil {
		t.Fatal("expected error for missing report file")
	}
}

func TestAnalyzeReportNoPages(t *testing.T) {
	svc := NewReportService(echoAI(), &fakePages{}, filepath.Join(t.TempDir(), "outputs"), 2, 10)
	if _, err := svc.AnalyzeReport(context.Background(), writeTempPDF(t)); err == nil {
		t.Fatal("expected error for empty document")
	}
}

func TestAnalyzeReportSynthesisFailureIsNotFatal(t *testing.T) {
	pages := &fakePages{pages: []types.PageText{{Page: 1, Content: "values"}}}
	ai := &fakeAI{
		chat: func(cfg types.AgentConfig, messages []types.Message) (string, error) {
			if cfg.Name == agent.FinalReport.Name {
				return "", fmt.Errorf("model overloaded")
			}
			return "ok", nil
		},
	}
	svc := NewReportService(ai, pages, filepath.Join(t.TempDir(), "outputs"), 2, 10)

	result, err := svc.AnalyzeReport(context.Background(), writeTempPDF(t))
	if err != nil {
		t.Fatalf("AnalyzeReport failed: %v", err)
	}
	if result.FinalReport != "" {
		t.Errorf("expected empty final report, got %q", result.FinalReport)
	}
	if len(result.Pages) != 1 {
		t.Fatalf("page analyses must survive a synthesis failure, got %d", len(result.Pages))
	}
}

func TestAnalyzeReportClearsStaleArtifacts(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "outputs")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		t.Fatalf("failed to create output dir: %v", err)
	}
	stale := filepath.Join(outDir, "page_99.txt")
	if err := os.WriteFile(stale, []byte("old run"), 0644); err != nil {
		t.Fatalf("failed to write stale file: %v", err)
	}

	pages := &fakePages{pages: []types.PageText{{Page: 1, Content: "values"}}}
	svc := NewReportService(echoAI(), pages, outDir, 2, 10)
	if _, err := svc.AnalyzeReport(context.Background(), writeTempPDF(t)); err != nil {
		t.Fatalf("AnalyzeReport failed: %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale artifact from previous run survived")
	}
}

func TestRunPageTasksKeepsInputOrder(t *testing.T) {
	pages := make([]types.PageText, 8)
	for i := range pages {
		pages[i] = types.PageText{Page: i + 1}
	}
	svc := NewReportService(echoAI(), &fakePages{}, t.TempDir(), 3, 10)

	results := svc.runPageTasks(context.Background(), pages, func(ctx context.Context, page types.PageText) types.PageResult {
		return types.PageResult{Page: page.Page, Content: fmt.Sprintf("r%d", page.Page)}
	})

	if len(results) != len(pages) {
		t.Fatalf("expected %d results, got %d", len(pages), len(results))
	}
	for i, r := range results {
		if r.Page != i+1 {
			t.Errorf("result %d out of order: page %d", i, r.Page)
		}
	}
}
