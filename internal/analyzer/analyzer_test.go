package analyzer

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lucasnoah/tfanalyzer/internal/llm"
)

// writeZip creates a zip archive at path with the given name→content entries.
func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func newTestAnalyzer(t *testing.T, chain llm.Chain, cmd CommandRunner) (*Analyzer, string) {
	t.Helper()
	tmpRoot := t.TempDir()
	an, err := New(chain, Options{Runner: cmd, TmpRoot: tmpRoot})
	if err != nil {
		t.Fatal(err)
	}
	return an, tmpRoot
}

func TestNew_NilChain(t *testing.T) {
	if _, err := New(nil, Options{}); !errors.Is(err, ErrNoChain) {
		t.Fatalf("expected ErrNoChain, got %v", err)
	}
}

func TestAnalyzer_Analyze_EmptyPath(t *testing.T) {
	an, _ := newTestAnalyzer(t, &fakeChain{}, &mockCmd{})
	if _, err := an.Analyze(context.Background(), ""); !errors.Is(err, ErrNoPath) {
		t.Fatalf("expected ErrNoPath, got %v", err)
	}
}

func TestAnalyzer_Analyze_UnsupportedPath(t *testing.T) {
	an, _ := newTestAnalyzer(t, &fakeChain{}, &mockCmd{})
	file := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := an.Analyze(context.Background(), file); err == nil {
		t.Fatal("expected error for a non-zip regular file")
	}
}

func TestAnalyzer_Analyze_Directory(t *testing.T) {
	mock := &mockCmd{
		results: []mockResult{
			{Stderr: "Error: bad ref in modified_main.tf", ExitCode: 1},
		},
	}
	chain := &fakeChain{issues: []llm.Issue{
		{FileName: "main.tofu", Description: "bad ref"},
	}}
	an, _ := newTestAnalyzer(t, chain, mock)

	src := t.TempDir()
	writeFile(t, src, "main.tofu")

	result, err := an.Analyze(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != StatusOK {
		t.Errorf("status = %q, want ok", result.Status)
	}
	if len(result.Findings) != 1 || result.Findings[0].FileName != "main.tofu" {
		t.Errorf("unexpected findings: %+v", result.Findings)
	}

	// The chain must see original names, never the renamed ones.
	if !strings.Contains(chain.gotDoc, "main.tofu") {
		t.Errorf("document should mention main.tofu: %q", chain.gotDoc)
	}
	if strings.Contains(chain.gotDoc, "modified_main.tf") {
		t.Errorf("document leaked a renamed file: %q", chain.gotDoc)
	}

	// Caller-supplied directories are never deleted.
	if _, err := os.Stat(src); err != nil {
		t.Errorf("source directory was removed: %v", err)
	}
}

func TestAnalyzer_Analyze_ZipRemovesTempCopy(t *testing.T) {
	mock := &mockCmd{
		results: []mockResult{
			{ExitCode: 0}, // validate
			{ExitCode: 0}, // init
			{ExitCode: 0}, // tflint
		},
	}
	an, tmpRoot := newTestAnalyzer(t, &fakeChain{}, mock)

	archive := filepath.Join(t.TempDir(), "src.zip")
	writeZip(t, archive, map[string]string{"main.tf": "# tf\n"})

	result, err := an.Analyze(context.Background(), archive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != StatusOK {
		t.Errorf("status = %q, want ok", result.Status)
	}
	if len(result.Findings) != 0 {
		t.Errorf("expected no findings, got %+v", result.Findings)
	}

	copyDir := filepath.Join(tmpRoot, "repo_copy")
	if _, err := os.Stat(copyDir); !os.IsNotExist(err) {
		t.Errorf("temp copy %s should be removed after the run", copyDir)
	}
	// The tools ran inside the temp copy, not on the archive.
	if mock.calls[0].Dir != copyDir {
		t.Errorf("tools ran in %q, want %q", mock.calls[0].Dir, copyDir)
	}
	// The archive itself survives.
	if _, err := os.Stat(archive); err != nil {
		t.Errorf("input archive was removed: %v", err)
	}
}

func TestAnalyzer_Analyze_ToolFailureSoftAborts(t *testing.T) {
	mock := &mockCmd{
		results: []mockResult{
			{ExitCode: -1, Err: errors.New("terraform not found")},
		},
	}
	chain := &fakeChain{}
	an, tmpRoot := newTestAnalyzer(t, chain, mock)

	archive := filepath.Join(t.TempDir(), "src.zip")
	writeZip(t, archive, map[string]string{"main.tf": "# tf\n"})

	result, err := an.Analyze(context.Background(), archive)
	if err != nil {
		t.Fatalf("soft failure must not return an error, got %v", err)
	}
	if result.Status != StatusAborted {
		t.Errorf("status = %q, want aborted", result.Status)
	}
	if result.Findings == nil || len(result.Findings) != 0 {
		t.Errorf("aborted result must carry an empty findings list, got %+v", result.Findings)
	}
	if chain.gotDoc != "" {
		t.Error("summarization must not run after a tool failure")
	}

	// Cleanup still happens on the failure path.
	if _, err := os.Stat(filepath.Join(tmpRoot, "repo_copy")); !os.IsNotExist(err) {
		t.Error("temp copy should be removed even when tools fail")
	}
}

func TestAnalyzer_Analyze_CleanupFailureSoftAborts(t *testing.T) {
	mock := &mockCmd{
		results: []mockResult{
			{ExitCode: 0},
			{ExitCode: 0},
			{Stdout: "main.tf:1: issue", ExitCode: 2},
		},
	}
	chain := &fakeChain{issues: []llm.Issue{{FileName: "main.tf", Description: "issue"}}}
	an, err := New(chain, Options{
		Runner:  mock,
		TmpRoot: t.TempDir(),
		Remove:  func(string) error { return errors.New("device or resource busy") },
	})
	if err != nil {
		t.Fatal(err)
	}

	archive := filepath.Join(t.TempDir(), "src.zip")
	writeZip(t, archive, map[string]string{"main.tf": "# tf\n"})

	result, err := an.Analyze(context.Background(), archive)
	if err != nil {
		t.Fatalf("cleanup failure must not return an error, got %v", err)
	}
	if result.Status != StatusAborted {
		t.Errorf("status = %q, want aborted", result.Status)
	}
	if result.Findings == nil || len(result.Findings) != 0 {
		t.Errorf("aborted result must carry an empty findings list, got %+v", result.Findings)
	}
	// Summarization must never run on a copy that could not be disposed of.
	if chain.gotDoc != "" {
		t.Errorf("chain was called with %q", chain.gotDoc)
	}
}

func TestAnalyzer_Analyze_FailedExtractionLeavesNoCopy(t *testing.T) {
	an, tmpRoot := newTestAnalyzer(t, &fakeChain{}, &mockCmd{})

	// "a" extracts as a file, then "a/b" needs "a" as a directory, which
	// fails mid-extraction and leaves a partial copy to clean up.
	archive := filepath.Join(t.TempDir(), "src.zip")
	writeZip(t, archive, map[string]string{
		"a":   "file\n",
		"a/b": "nested\n",
	})

	if _, err := an.Analyze(context.Background(), archive); err == nil {
		t.Fatal("expected extraction error")
	}
	if _, err := os.Stat(filepath.Join(tmpRoot, "repo_copy")); !os.IsNotExist(err) {
		t.Error("partial copy should be removed after a failed extraction")
	}
}

func TestAnalyzer_Analyze_MissingInitializerSoftAborts(t *testing.T) {
	mock := &mockCmd{
		results: []mockResult{
			{ExitCode: 0},
			{ExitCode: -1, Err: errors.New("exec terraform: executable file not found")},
		},
	}
	an, tmpRoot := newTestAnalyzer(t, &fakeChain{}, mock)

	archive := filepath.Join(t.TempDir(), "src.zip")
	writeZip(t, archive, map[string]string{"main.tf": "# tf\n"})

	result, err := an.Analyze(context.Background(), archive)
	if err != nil {
		t.Fatalf("expected soft abort, got error %v", err)
	}
	if result.Status != StatusAborted {
		t.Errorf("status = %q, want aborted", result.Status)
	}
	if _, err := os.Stat(filepath.Join(tmpRoot, "repo_copy")); !os.IsNotExist(err) {
		t.Error("temp copy should be removed after the failed init")
	}
}

func TestAnalyzer_Analyze_SummarizeFailureIsHard(t *testing.T) {
	mock := &mockCmd{
		results: []mockResult{
			{ExitCode: 0},
			{ExitCode: 0},
			{ExitCode: 0},
		},
	}
	chain := &fakeChain{err: errors.New("model unavailable")}
	an, _ := newTestAnalyzer(t, chain, mock)

	src := t.TempDir()
	writeFile(t, src, "main.tf")

	result, err := an.Analyze(context.Background(), src)
	if err == nil {
		t.Fatal("summarization failure must surface as an error")
	}
	if result != nil {
		t.Errorf("expected nil result on hard failure, got %+v", result)
	}
}
