package testrunner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	goruntime "runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/example/ack/builtins"
	"github.com/example/ack/interpreter"
	"github.com/example/ack/parser"
	"github.com/example/ack/runtime"
)

type Result int

const (
	Pass Result = iota
	Fail
	Skip
	Error
)

func (r Result) String() string {
	switch r {
	case Pass:
		return "PASS"
	case Fail:
		return "FAIL"
	case Skip:
		return "SKIP"
	case Error:
		return "ERROR"
	}
	return "UNKNOWN"
}

type TestResult struct {
	Path       string
	Result     Result
	Message    string
	Assertions int
	Elapsed    time.Duration
}

type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
	Errors  int
	Elapsed time.Duration
}

// OK reports whether no script failed or errored.
func (s Summary) OK() bool {
	return s.Failed == 0 && s.Errors == 0
}

const DefaultTimeout = 5 * time.Second

type Config struct {
	Dir     string
	Filter  string
	Jobs    int
	Timeout time.Duration
	Verbose bool

	// Options apply to every interpreter the runner creates.
	Options []interpreter.Option
	// Stdout receives console.log output. Nil discards it.
	Stdout io.Writer
	Logger *slog.Logger
}

// Run executes every .js file under cfg.Dir in its own interpreter and
// returns the per-file results in path order together with a summary.
func Run(ctx context.Context, cfg Config) ([]TestResult, Summary, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	files, err := listScripts(cfg.Dir, cfg.Filter)
	if err != nil {
		return nil, Summary{}, err
	}

	jobs := cfg.Jobs
	if jobs <= 0 {
		jobs = goruntime.GOMAXPROCS(0)
	}

	start := time.Now()
	results := make([]TestResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(files))))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rel, err := filepath.Rel(cfg.Dir, path)
			if err != nil {
				rel = path
			}
			tr := runSingleTest(gctx, path, filepath.ToSlash(rel), cfg)
			results[i] = tr
			if tr.Result == Fail || tr.Result == Error {
				logger.Warn("script failed", "path", tr.Path, "result", tr.Result.String(), "message", tr.Message)
			} else {
				logger.Debug("script finished", "path", tr.Path, "result", tr.Result.String(), "elapsed", tr.Elapsed)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Summary{}, err
	}

	summary := Summary{Total: len(results), Elapsed: time.Since(start)}
	for _, tr := range results {
		switch tr.Result {
		case Pass:
			summary.Passed++
		case Fail:
			summary.Failed++
		case Skip:
			summary.Skipped++
		case Error:
			summary.Errors++
		}
	}
	return results, summary, nil
}

func listScripts(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".js") {
			return nil
		}
		if filter != "" {
			rel, _ := filepath.Rel(dir, path)
			if !strings.Contains(filepath.ToSlash(rel), filter) {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list scripts in %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

type evalResult struct {
	err        error
	assertions int
}

func runSingleTest(ctx context.Context, path, rel string, cfg Config) TestResult {
	source, err := os.ReadFile(path)
	if err != nil {
		return TestResult{Path: rel, Result: Error, Message: "read error: " + err.Error()}
	}

	meta, err := parseMetadata(string(source))
	if err != nil {
		return TestResult{Path: rel, Result: Error, Message: "bad metadata: " + err.Error()}
	}
	if meta.hasFlag("skip") {
		return TestResult{Path: rel, Result: Skip, Message: meta.Description}
	}

	opts := append([]interpreter.Option{}, cfg.Options...)
	if cfg.Logger != nil {
		opts = append(opts, interpreter.WithLogger(cfg.Logger.With("script", rel)))
	}
	if meta.hasFlag("strict") {
		opts = append(opts, interpreter.WithStrictAssignment(true))
	}
	stdout := cfg.Stdout
	if stdout == nil {
		stdout = io.Discard
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	start := time.Now()
	resultCh := make(chan evalResult, 1)
	interp := interpreter.New(opts...)
	go func() {
		builtins.RegisterAll(interp, builtins.WithStdout(stdout))
		installHarness(interp)
		_, err := interp.EvalNamed(rel, string(source))
		resultCh <- evalResult{err: err, assertions: assertionCount(interp)}
	}()

	var res evalResult
	select {
	case res = <-resultCh:
	case <-ctx.Done():
		interp.Interrupt()
		return TestResult{Path: rel, Result: Error, Message: "cancelled", Elapsed: time.Since(start)}
	case <-time.After(timeout):
		interp.Interrupt()
		return TestResult{Path: rel, Result: Error, Message: fmt.Sprintf("timeout (%s)", timeout), Elapsed: time.Since(start)}
	}

	tr := TestResult{Path: rel, Assertions: res.assertions, Elapsed: time.Since(start)}

	// Negative scripts must fail with the named error kind
	if meta.Negative != nil {
		kind := errorKind(res.err)
		switch {
		case res.err == nil:
			tr.Result = Fail
			tr.Message = fmt.Sprintf("expected %s but the script completed", meta.Negative.Type)
		case kind != meta.Negative.Type:
			tr.Result = Fail
			tr.Message = fmt.Sprintf("expected %s, got %s", meta.Negative.Type, describe(res.err))
		default:
			tr.Result = Pass
		}
		return tr
	}

	if res.err != nil {
		tr.Result = Fail
		tr.Message = describe(res.err)
		return tr
	}
	tr.Result = Pass
	return tr
}

// errorKind names the class of a script error the way negative metadata
// spells it: SyntaxError, ReferenceError, TypeError, RangeError or Uncaught.
func errorKind(err error) string {
	var serr *parser.SyntaxError
	if errors.As(err, &serr) {
		return "SyntaxError"
	}
	var rerr *runtime.Error
	if errors.As(err, &rerr) {
		return rerr.Kind.String()
	}
	return ""
}

// describe renders a script error with the line and column it was raised
// at when known.
func describe(err error) string {
	var rerr *runtime.Error
	if errors.As(err, &rerr) && rerr.Line > 0 {
		return fmt.Sprintf("%s (%d:%d)", err, rerr.Line, rerr.Column)
	}
	return err.Error()
}

// Metadata is the optional YAML block a script opens with, between /*---
// and ---*/.
type Metadata struct {
	Description string    `yaml:"description"`
	Flags       []string  `yaml:"flags"`
	Negative    *Negative `yaml:"negative"`
}

type Negative struct {
	Type string `yaml:"type"`
}

func (m Metadata) hasFlag(name string) bool {
	for _, f := range m.Flags {
		if f == name {
			return true
		}
	}
	return false
}

func parseMetadata(source string) (Metadata, error) {
	var meta Metadata

	startIdx := strings.Index(source, "/*---")
	if startIdx < 0 {
		return meta, nil
	}
	endIdx := strings.Index(source[startIdx:], "---*/")
	if endIdx < 0 {
		return meta, errors.New("unterminated metadata block")
	}
	if err := yaml.Unmarshal([]byte(source[startIdx+5:startIdx+endIdx]), &meta); err != nil {
		return meta, err
	}
	return meta, nil
}
