// Package analyzer runs terraform validate and tflint over a source tree and
// condenses their raw output into a deduplicated list of findings via an
// LLM extraction chain.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/lucasnoah/tfanalyzer/internal/llm"
	"github.com/lucasnoah/tfanalyzer/internal/workdir"
)

// Analyzer orchestrates one analysis run: normalize OpenTofu files, run the
// external tools, rectify their output, and summarize it into findings.
// An Analyzer holds no per-run state; concurrent runs against distinct
// working directories are independent.
type Analyzer struct {
	chain   llm.Chain
	cmd     CommandRunner
	tmpRoot string
	remove  func(dir string) error
	log     *slog.Logger
}

// Options configure an Analyzer beyond its required extraction chain.
type Options struct {
	Runner  CommandRunner          // defaults to ExecRunner
	TmpRoot string                 // extraction root for zip inputs; defaults to $TMP_DIR or "."
	Remove  func(dir string) error // temp copy disposal; defaults to workdir.Remove
	Logger  *slog.Logger           // defaults to slog.Default()
}

// New creates an Analyzer. The extraction chain is an explicit dependency so
// tests can substitute it and concurrent runs can use different models.
func New(chain llm.Chain, opts Options) (*Analyzer, error) {
	if chain == nil {
		return nil, ErrNoChain
	}

	cmd := opts.Runner
	if cmd == nil {
		cmd = ExecRunner{}
	}
	tmpRoot := opts.TmpRoot
	if tmpRoot == "" {
		tmpRoot = os.Getenv("TMP_DIR")
	}
	remove := opts.Remove
	if remove == nil {
		remove = workdir.Remove
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Analyzer{chain: chain, cmd: cmd, tmpRoot: tmpRoot, remove: remove, log: logger}, nil
}

// Analyze runs the pipeline against path, which must be a directory or a zip
// archive. Directories supplied by the caller are never deleted; archives
// are extracted into a temporary copy that is always deleted before the run
// returns.
//
// Failure policy: a tool that cannot be run, and a temp copy that cannot be
// removed, degrade to an aborted Result with no findings and a nil error.
// A summarization failure is returned as an error, never as an empty result.
func (a *Analyzer) Analyze(ctx context.Context, path string) (*Result, error) {
	if path == "" {
		return nil, ErrNoPath
	}

	var dir string
	var tempCopy bool
	switch workdir.Classify(path) {
	case workdir.PathZip:
		dir = workdir.TempCopyDir(a.tmpRoot)
		tempCopy = true
		if err := workdir.ExtractZip(path, dir); err != nil {
			// A failed extraction can leave a partial copy behind.
			a.cleanup(dir, tempCopy)
			return nil, fmt.Errorf("extract archive: %w", err)
		}
	case workdir.PathDir:
		dir = path
	default:
		return nil, fmt.Errorf("%q is neither a zip archive nor a directory", path)
	}

	renames, err := NormalizeTofuFiles(dir)
	if err != nil {
		a.cleanup(dir, tempCopy)
		return nil, fmt.Errorf("normalize tofu files: %w", err)
	}

	tools, err := NewToolRunner(a.cmd).Run(ctx, dir)
	if err != nil {
		a.log.Error("static checks failed", "dir", dir, "error", err)
		a.cleanup(dir, tempCopy)
		return abortedResult(), nil
	}

	// The temp copy is disposable; drop it before rectification so nothing
	// downstream can observe the renamed files on disk.
	if tempCopy {
		if err := a.remove(dir); err != nil {
			a.log.Error("remove repo copy", "dir", dir, "error", err)
			return abortedResult(), nil
		}
	}

	doc := BuildDocument(tools.Rectified(renames))
	findings, err := NewSummarizer(a.chain).Summarize(ctx, doc)
	if err != nil {
		a.log.Error("summarization failed", "error", err)
		return nil, err
	}

	return &Result{Findings: findings, Status: StatusOK}, nil
}

// cleanup removes the working directory when it is a pipeline-managed temp
// copy. Errors here are logged only; callers on error paths have already
// decided the run's outcome.
func (a *Analyzer) cleanup(dir string, tempCopy bool) {
	if !tempCopy {
		return
	}
	if err := a.remove(dir); err != nil {
		a.log.Error("remove repo copy", "dir", dir, "error", err)
	}
}

func abortedResult() *Result {
	return &Result{Findings: []Finding{}, Status: StatusAborted}
}
