package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tieubaoca/medguide-be/types"
)

type fakeVectorDB struct {
	reInitCalled bool
	inserted     []types.DocumentChunk
	searchDocs   []types.Document
}

func (f *fakeVectorDB) ReInit() error {
	f.reInitCalled = true
	return nil
}

func (f *fakeVectorDB) BatchInsertChunks(ctx context.Context, chunks []types.DocumentChunk) error {
	f.inserted = append(f.inserted, chunks...)
	return nil
}

func (f *fakeVectorDB) Search(ctx context.Context, query string, limit int) ([]types.Document, error) {
	return f.searchDocs, nil
}

func knowledgeFixture(t *testing.T) (pdfsDir, outputsDir string) {
	t.Helper()
	base := t.TempDir()
	pdfsDir = filepath.Join(base, "pdfs")
	outputsDir = filepath.Join(base, "outputs")
	for _, dir := range []string{pdfsDir, outputsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}
	return pdfsDir, outputsDir
}

func writeFixtureFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestBuildKnowledgeBaseNoFiles(t *testing.T) {
	pdfsDir, outputsDir := knowledgeFixture(t)
	svc := NewKnowledgeService(&fakeVectorDB{}, NewPDFService(types.DocumentServiceConfig{}), pdfsDir, outputsDir)

	if _, err := svc.BuildKnowledgeBase(context.Background(), false); err == nil {
		t.Fatal("expected error when no text files exist")
	}
}

func TestBuildKnowledgeBaseTagsProvenance(t *testing.T) {
	pdfsDir, outputsDir := knowledgeFixture(t)
	writeFixtureFile(t, pdfsDir, "reference.txt", "Normal glucose is 70 to 100 mg/dL.")
	writeFixtureFile(t, outputsDir, "page_1.txt", "Patient glucose is 110 mg/dL, slightly high.")
	writeFixtureFile(t, outputsDir, "final_report.txt", "Overall the report shows mild hyperglycemia.")
	// Non-text files are ignored.
	writeFixtureFile(t, outputsDir, "notes.md", "ignore me")

	db := &fakeVectorDB{}
	svc := NewKnowledgeService(db, NewPDFService(types.DocumentServiceConfig{}), pdfsDir, outputsDir)

	count, err := svc.BuildKnowledgeBase(context.Background(), false)
	if err != nil {
		t.Fatalf("BuildKnowledgeBase failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 files indexed, got %d", count)
	}
	if db.reInitCalled {
		t.Error("ReInit must not run without recreate")
	}

	sources := map[string]int{}
	for _, chunk := range db.inserted {
		sources[chunk.Source]++
		if chunk.FileName == "" {
			t.Error("chunk missing file name")
		}
	}
	if sources[types.SourcePDF] != 1 {
		t.Errorf("expected 1 pdf-sourced chunk, got %d", sources[types.SourcePDF])
	}
	if sources[types.SourceOutput] != 2 {
		t.Errorf("expected 2 output-sourced chunks, got %d", sources[types.SourceOutput])
	}
}

func TestBuildKnowledgeBaseRecreate(t *testing.T) {
	pdfsDir, outputsDir := knowledgeFixture(t)
	writeFixtureFile(t, outputsDir, "page_1.txt", "analysis text")

	db := &fakeVectorDB{}
	svc := NewKnowledgeService(db, NewPDFService(types.DocumentServiceConfig{}), pdfsDir, outputsDir)

	if _, err := svc.BuildKnowledgeBase(context.Background(), true); err != nil {
		t.Fatalf("BuildKnowledgeBase failed: %v", err)
	}
	if !db.reInitCalled {
		t.Error("recreate must drop and recreate the index")
	}
	if len(db.inserted) == 0 {
		t.Error("expected chunks to be ingested after recreate")
	}
}

func TestBuildKnowledgeBaseMissingDirsAreEmpty(t *testing.T) {
	base := t.TempDir()
	svc := NewKnowledgeService(&fakeVectorDB{}, NewPDFService(types.DocumentServiceConfig{}),
		filepath.Join(base, "missing_pdfs"), filepath.Join(base, "missing_outputs"))

	if _, err := svc.BuildKnowledgeBase(context.Background(), false); err == nil {
		t.Fatal("expected error when both directories are missing")
	}
}
