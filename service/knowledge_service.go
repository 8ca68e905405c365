package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/tieubaoca/medguide-be/database"
	"github.com/tieubaoca/medguide-be/types"
	"github.com/tieubaoca/medguide-be/utils"
)

// KnowledgeService builds the searchable knowledge base from the text
// artifacts on disk: converted source PDFs and generated analyses.
type KnowledgeService struct {
	vectorDB   database.VectorDatabase
	pdfService *PDFService
	pdfsDir    string
	outputsDir string
}

func NewKnowledgeService(vectorDB database.VectorDatabase, pdfService *PDFService, pdfsDir, outputsDir string) *KnowledgeService {
	return &KnowledgeService{
		vectorDB:   vectorDB,
		pdfService: pdfService,
		pdfsDir:    pdfsDir,
		outputsDir: outputsDir,
	}
}

// BuildKnowledgeBase chunks and ingests every .txt file under the two
// artifact directories, tagging each chunk with its provenance. With
// recreate set, the prior index is dropped first; the ingest is a full
// rebuild, never incremental. Returns the number of files ingested.
func (s *KnowledgeService) BuildKnowledgeBase(ctx context.Context, recreate bool) (int, error) {
	pdfFiles, err := utils.ListTextFiles(s.pdfsDir)
	if err != nil {
		return 0, err
	}
	outputFiles, err := utils.ListTextFiles(s.outputsDir)
	if err != nil {
		return 0, err
	}

	if len(pdfFiles) == 0 && len(outputFiles) == 0 {
		return 0, fmt.Errorf("no .txt files found in %s or %s", s.pdfsDir, s.outputsDir)
	}
	log.Printf("Found %d source text files and %d output text files", len(pdfFiles), len(outputFiles))

	if recreate {
		log.Println("Recreating knowledge base index...")
		if err := s.vectorDB.ReInit(); err != nil {
			return 0, fmt.Errorf("failed to recreate index: %w", err)
		}
	}

	var chunks []types.DocumentChunk
	count := 0
	for _, path := range pdfFiles {
		fileChunks, err := s.chunkFile(path, types.SourcePDF)
		if err != nil {
			return 0, err
		}
		chunks = append(chunks, fileChunks...)
		count++
	}
	for _, path := range outputFiles {
		fileChunks, err := s.chunkFile(path, types.SourceOutput)
		if err != nil {
			return 0, err
		}
		chunks = append(chunks, fileChunks...)
		count++
	}

	if err := s.vectorDB.BatchInsertChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("failed to ingest chunks: %w", err)
	}
	log.Printf("Ingested %d files (%d chunks) into the knowledge base", count, len(chunks))
	return count, nil
}

func (s *KnowledgeService) chunkFile(path, source string) ([]types.DocumentChunk, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s.pdfService.ChunkText(string(content), filepath.Base(path), source, 0), nil
}
