package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tieubaoca/medguide-be/agent"
	"github.com/tieubaoca/medguide-be/types"
)

const finalReportFile = "final_report.txt"

// PageSource yields per-page text for a report file.
type PageSource interface {
	ExtractPages(filePath string) ([]types.PageText, error)
	TruncatePage(text string) string
}

// ReportService runs the analysis pipeline: page extraction and analysis
// fan out over a bounded worker pool, then one synthesis call merges the
// page analyses into the final report.
type ReportService struct {
	ai          AIService
	pages       PageSource
	outputDir   string
	workers     int
	taskTimeout time.Duration
}

func NewReportService(ai AIService, pages PageSource, outputDir string, workers, taskTimeoutSeconds int) *ReportService {
	if workers <= 0 {
		workers = 4
	}
	if taskTimeoutSeconds <= 0 {
		taskTimeoutSeconds = 200
	}
	return &ReportService{
		ai:          ai,
		pages:       pages,
		outputDir:   outputDir,
		workers:     workers,
		taskTimeout: time.Duration(taskTimeoutSeconds) * time.Second,
	}
}

// AnalyzeReport runs the full pipeline for one PDF. Per-page failures are
// converted to placeholder results and never abort the batch; only a
// missing file, an unreadable PDF or a fully failed extraction is an error.
func (s *ReportService) AnalyzeReport(ctx context.Context, pdfPath string) (*types.ReportResult, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		return nil, fmt.Errorf("report not found: %w", err)
	}

	if err := s.resetOutputDir(); err != nil {
		return nil, err
	}

	log.Printf("Extracting text per page from %s", pdfPath)
	pages, err := s.pages.ExtractPages(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to extract pages: %w", err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no text found in %s", pdfPath)
	}
	log.Printf("Extracted %d pages", len(pages))

	extracted := s.runPageTasks(ctx, pages, s.extractPage)

	// Failed extractions are dropped here; page numbers travel with every
	// result, so the analyses that follow still name their true pages.
	var analysisInput []types.PageText
	for _, r := range extracted {
		if r.Failed || r.Content == "" {
			log.Printf("Warning: page %d extraction produced no output", r.Page)
			continue
		}
		analysisInput = append(analysisInput, types.PageText{Page: r.Page, Content: r.Content})
	}
	if len(analysisInput) == 0 {
		return nil, fmt.Errorf("no pages could be extracted from %s", pdfPath)
	}

	log.Printf("Running page-wise analysis for %d pages", len(analysisInput))
	analyses := s.runPageTasks(ctx, analysisInput, s.analyzePage)

	result := &types.ReportResult{Pages: analyses}

	final, err := s.synthesize(ctx, analyses)
	if err != nil {
		// Synthesis failure is not fatal: page outputs remain available.
		log.Printf("Final report generation failed: %v", err)
		return result, nil
	}
	result.FinalReport = final
	return result, nil
}

// FinalReportPath is the artifact location of the merged report.
func (s *ReportService) FinalReportPath() string {
	return filepath.Join(s.outputDir, finalReportFile)
}

type pageTask func(ctx context.Context, page types.PageText) types.PageResult

// runPageTasks runs fn for every page concurrently, bounded by the worker
// count, and returns exactly one result per input in input order. Item
// failures are the task's responsibility; the scheduler itself never fails.
func (s *ReportService) runPageTasks(ctx context.Context, pages []types.PageText, fn pageTask) []types.PageResult {
	results := make([]types.PageResult, len(pages))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i, page := range pages {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, page types.PageText) {
			defer wg.Done()
			defer func() { <-sem }()

			taskCtx, cancel := context.WithTimeout(ctx, s.taskTimeout)
			defer cancel()
			results[i] = fn(taskCtx, page)
		}(i, page)
	}
	wg.Wait()
	return results
}

func (s *ReportService) extractPage(ctx context.Context, page types.PageText) types.PageResult {
	prompt := agent.PageExtractionPrompt(page.Page, s.pages.TruncatePage(page.Content))
	content, err := s.ai.Chat(ctx, agent.PageExtractor, []types.Message{
		{Role: types.RoleUser, Content: prompt},
	})
	if err != nil {
		log.Printf("Warning: page %d extraction failed: %v", page.Page, err)
		return types.PageResult{Page: page.Page, Failed: true}
	}
	return types.PageResult{Page: page.Page, Content: strings.TrimSpace(content)}
}

func (s *ReportService) analyzePage(ctx context.Context, page types.PageText) types.PageResult {
	prompt := agent.PageAnalysisPrompt(page.Page, s.pages.TruncatePage(page.Content))
	content, err := s.ai.Chat(ctx, agent.PageAnalyzer, []types.Message{
		{Role: types.RoleUser, Content: prompt},
	})
	if err != nil {
		log.Printf("Warning: page %d analysis failed: %v", page.Page, err)
		return types.PageResult{
			Page:    page.Page,
			Content: analysisPlaceholder(page.Page),
			Failed:  true,
		}
	}

	content = strings.TrimSpace(content)
	pageFile := filepath.Join(s.outputDir, fmt.Sprintf("page_%d.txt", page.Page))
	if err := os.WriteFile(pageFile, []byte(content), 0644); err != nil {
		log.Printf("Warning: failed to save page %d analysis: %v", page.Page, err)
	} else {
		log.Printf("Saved page %d analysis to %s", page.Page, pageFile)
	}
	return types.PageResult{Page: page.Page, Content: content}
}

// synthesize merges all page analyses, placeholders included, into one
// final report and persists it.
func (s *ReportService) synthesize(ctx context.Context, analyses []types.PageResult) (string, error) {
	parts := make([]string, 0, len(analyses))
	for _, a := range analyses {
		parts = append(parts, a.Content)
	}
	merged := strings.Join(parts, agent.PageBreakMarker)

	log.Println("Synthesizing final report...")
	final, err := s.ai.Chat(ctx, agent.FinalReport, []types.Message{
		{Role: types.RoleUser, Content: agent.FinalReportPrompt(merged)},
	})
	if err != nil {
		return "", err
	}
	final = strings.TrimSpace(final)

	finalPath := s.FinalReportPath()
	if err := os.WriteFile(finalPath, []byte(final), 0644); err != nil {
		return "", fmt.Errorf("failed to save final report: %w", err)
	}
	log.Printf("Final report saved to %s", finalPath)
	return final, nil
}

// resetOutputDir wipes artifacts from the previous run so a smaller report
// never leaves stale page files behind.
func (s *ReportService) resetOutputDir() error {
	if err := os.RemoveAll(s.outputDir); err != nil {
		return fmt.Errorf("failed to clean output directory: %w", err)
	}
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

func analysisPlaceholder(page int) string {
	return fmt.Sprintf("[Page %d] Analysis failed.", page)
}
