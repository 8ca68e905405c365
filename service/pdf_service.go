package service

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/tieubaoca/medguide-be/types"
)

// PDFService extracts text from lab-report PDFs and chunks text artifacts
// for indexing. Extraction uses the pure-Go pdf library first and falls
// back to pdftotext when the library yields nothing.
type PDFService struct {
	maxChunkSize int // Maximum size of each text chunk
	overlapSize  int // Size of overlap between chunks
	maxPageChars int // Per-page budget before prompting
}

var DefaultDocumentServiceConfig = types.DocumentServiceConfig{
	MaxChunkSize: 1000,
	OverlapSize:  150,
	MaxPageChars: 15000,
}

// NewPDFService creates a new PDF service with configurable chunk sizes
func NewPDFService(config types.DocumentServiceConfig) *PDFService {
	if config.MaxChunkSize <= 0 {
		config.MaxChunkSize = DefaultDocumentServiceConfig.MaxChunkSize
	}
	if config.OverlapSize <= 0 {
		config.OverlapSize = DefaultDocumentServiceConfig.OverlapSize
	}
	if config.MaxPageChars <= 0 {
		config.MaxPageChars = DefaultDocumentServiceConfig.MaxPageChars
	}
	return &PDFService{
		maxChunkSize: config.MaxChunkSize,
		overlapSize:  config.OverlapSize,
		maxPageChars: config.MaxPageChars,
	}
}

// ExtractPages returns the text of every non-empty page. Page numbers stay
// 1-based and keep their original value when empty pages are skipped.
func (s *PDFService) ExtractPages(filePath string) ([]types.PageText, error) {
	raw, err := s.extractRawPages(filePath)
	if err != nil {
		return nil, err
	}

	var pages []types.PageText
	for i, text := range raw {
		text = s.cleanText(text)
		if text == "" {
			continue
		}
		pages = append(pages, types.PageText{Page: i + 1, Content: text})
	}
	return pages, nil
}

// ExtractAll returns the whole document as one string with page banners,
// the format used for the knowledge base text conversions.
func (s *PDFService) ExtractAll(filePath string) (string, error) {
	raw, err := s.extractRawPages(filePath)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, text := range raw {
		text = s.cleanText(text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "\n--- Page %d ---\n%s\n", i+1, text)
	}
	return b.String(), nil
}

// ConvertPDFDirToText converts every PDF in inputDir to a .txt file in
// outputDir and returns the number of files written. A file that fails to
// convert is logged and skipped.
func (s *PDFService) ConvertPDFDirToText(inputDir, outputDir string) (int, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read directory %s: %w", inputDir, err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	converted := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		pdfPath := filepath.Join(inputDir, entry.Name())
		text, err := s.ExtractAll(pdfPath)
		if err != nil {
			log.Printf("Warning: failed to convert %s: %v", entry.Name(), err)
			continue
		}
		base := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		outPath := filepath.Join(outputDir, base+".txt")
		if err := os.WriteFile(outPath, []byte(text), 0644); err != nil {
			log.Printf("Warning: failed to write %s: %v", outPath, err)
			continue
		}
		converted++
	}
	return converted, nil
}

// TruncatePage caps a page's text at the configured character budget so an
// oversized single page cannot blow the prompt.
func (s *PDFService) TruncatePage(text string) string {
	if len(text) <= s.maxPageChars {
		return text
	}
	return text[:s.maxPageChars]
}

// extractRawPages returns one entry per physical page, empty pages
// included, so indices map to page numbers.
func (s *PDFService) extractRawPages(filePath string) ([]string, error) {
	pages, err := s.extractWithLibrary(filePath)
	if err != nil || allEmpty(pages) {
		fallback, fbErr := s.extractWithPdftotext(filePath)
		if fbErr != nil {
			if err != nil {
				return nil, fmt.Errorf("failed to extract text: %w", err)
			}
			return nil, fmt.Errorf("failed to extract text: %w", fbErr)
		}
		return fallback, nil
	}
	return pages, nil
}

func (s *PDFService) extractWithLibrary(filePath string) ([]string, error) {
	f, reader, err := pdflib.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]string, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Printf("Warning: failed to extract text from page %d: %v", i, err)
			continue
		}
		pages[i-1] = text
	}
	return pages, nil
}

// extractWithPdftotext shells out to pdftotext; pages come back separated
// by form feeds.
func (s *PDFService) extractWithPdftotext(filePath string) ([]string, error) {
	cmd := exec.Command("pdftotext", "-enc", "UTF-8", filePath, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return strings.Split(string(out), "\f"), nil
}

// ChunkText splits text into overlapping chunks with sentence boundaries
// preferred over raw cuts.
func (s *PDFService) ChunkText(text, fileName, source string, page int) []types.DocumentChunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	newChunk := func(content string) types.DocumentChunk {
		return types.DocumentChunk{
			Content:  content,
			FileName: fileName,
			Source:   source,
			Page:     page,
		}
	}

	textLen := len(text)
	if textLen <= s.maxChunkSize {
		return []types.DocumentChunk{newChunk(text)}
	}

	var chunks []types.DocumentChunk
	currentPos := 0
	for currentPos < textLen {
		chunkEnd := currentPos + s.maxChunkSize
		if chunkEnd >= textLen {
			if chunk := strings.TrimSpace(text[currentPos:]); chunk != "" {
				chunks = append(chunks, newChunk(chunk))
			}
			break
		}

		// Find nearest sentence end
		sentenceEnd := chunkEnd
		for i := chunkEnd; i > currentPos; i-- {
			if text[i] == '.' || text[i] == '?' || text[i] == '!' {
				sentenceEnd = i + 1
				break
			}
		}

		// If no sentence end found, use word boundary
		if sentenceEnd == chunkEnd {
			for i := chunkEnd; i > currentPos; i-- {
				if text[i] == ' ' {
					sentenceEnd = i
					break
				}
			}
		}

		if chunk := strings.TrimSpace(text[currentPos:sentenceEnd]); chunk != "" {
			chunks = append(chunks, newChunk(chunk))
		}

		// Step back for overlap, but always make progress.
		next := sentenceEnd - s.overlapSize
		if next <= currentPos {
			next = sentenceEnd
		}
		currentPos = next
	}
	return chunks
}

func (s *PDFService) cleanText(text string) string {
	replacements := map[string]string{
		"\u0000": "",   // Null character
		"\ufffd": "",   // Unicode replacement character
		"\u001b": "",   // Escape character
		"\r":     "",   // Carriage return
		"\f":     "\n", // Form feed to newline
		"  ":     " ",  // Multiple spaces to single space
	}
	cleaned := text
	for old, new := range replacements {
		cleaned = strings.ReplaceAll(cleaned, old, new)
	}
	return strings.TrimSpace(cleaned)
}

func allEmpty(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}

// GetFileNameWithoutExt extracts the base filename without extension.
func GetFileNameWithoutExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
