// Package linter provides the per-file lint pipeline used by the CLI.
//
// The pipeline: file checks → analysis bundle → config → session → rule
// dispatch → diagnostic collection. Callers use [LintFile] or [LintFiles]
// to run it and then apply [Processors] to filter and order the results.
package linter

import (
	"context"
	"fmt"
	"iter"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/config"
	"github.com/wharflab/pslint/internal/dsc"
	"github.com/wharflab/pslint/internal/fileval"
	"github.com/wharflab/pslint/internal/hostast"
	"github.com/wharflab/pslint/internal/rules"
	_ "github.com/wharflab/pslint/internal/rules/all" // Register all rules.
	"github.com/wharflab/pslint/internal/session"
)

// Input configures a single invocation of [LintFile].
type Input struct {
	// FilePath is the script or bundle to lint ("-" reads a bundle from
	// standard input). It is used for config discovery and diagnostic
	// locations.
	FilePath string

	// Bundle is the decoded analysis bundle. If nil, LintFile loads it from
	// FilePath.
	Bundle *hostast.Bundle

	// Config is the resolved configuration. If nil, LintFile loads it from
	// FilePath.
	Config *config.Config

	// Registry supplies the rules. If nil, the default registry is used.
	Registry *rules.Registry
}

// Result contains the output of [LintFile].
type Result struct {
	// Diagnostics are raw diagnostics before processor filtering.
	Diagnostics []rules.Diagnostic

	// Bundle is the analyzed bundle. Nil when the file was rejected before
	// analysis.
	Bundle *hostast.Bundle

	// Config is the resolved config (loaded or passed in via Input).
	Config *config.Config

	// RulesRun counts the rules dispatched against the script.
	RulesRun int
}

// LintFile runs the full lint pipeline for one file.
// It returns raw diagnostics before processor filtering.
func LintFile(ctx context.Context, input Input) (*Result, error) {
	cfg := input.Config
	if cfg == nil {
		var err error
		cfg, err = config.Load(input.FilePath)
		if err != nil {
			logrus.WithField("file", input.FilePath).WithError(err).Warn("linter: config load error, using defaults")
			cfg = config.Default()
		}
	}
	result := &Result{Config: cfg}

	bundle := input.Bundle
	if bundle == nil {
		if diag, ok, err := validate(input.FilePath, cfg); err != nil {
			return nil, err
		} else if !ok {
			result.Diagnostics = []rules.Diagnostic{diag}
			return result, nil
		}

		var err error
		bundle, err = hostast.Load(ctx, input.FilePath)
		if err != nil {
			return nil, errors.Wrapf(err, "load %s", input.FilePath)
		}
	}
	result.Bundle = bundle

	opts := bundle.SessionOptions()
	if path := cfg.CatalogPath(); path != "" {
		catalog, err := session.LoadCatalog(path)
		if err != nil {
			logrus.WithField("file", bundle.Path).WithError(err).Warn("linter: command catalog ignored")
		} else {
			opts.Commands = append(append([]session.CommandInfo(nil), opts.Commands...), catalog...)
		}
	}
	sess := session.New(opts)

	for _, pe := range bundle.ParseErrors {
		msg := pe.Message
		if pe.ID != "" {
			msg = fmt.Sprintf("%s (%s)", pe.Message, pe.ID)
		}
		result.Diagnostics = append(result.Diagnostics,
			rules.NewDiagnostic(pe.Extent, rules.ParseErrorName, msg, rules.SeverityParseError))
	}

	registry := input.Registry
	if registry == nil {
		registry = rules.DefaultRegistry()
	}

	d := dispatcher{
		sess: sess,
		root: bundle.Root,
		file: bundle.Path,
	}
	for _, proto := range registry.All() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := proto.Metadata().Name
		rule := registry.New(name)

		if cr, ok := rule.(rules.ConfigurableRule); ok {
			if err := cr.Configure(cfg.Rules.GetOptions(name)); err != nil {
				logrus.WithFields(logrus.Fields{"rule": name, "file": d.file}).
					WithError(err).Warn("linter: invalid rule options, using defaults")
				result.Diagnostics = append(result.Diagnostics, d.engineDiagnostic(
					rules.ConfigurationErrorName,
					fmt.Sprintf("%s: %v", name, err),
					rules.SeverityWarning,
				))
			}
		}
		if !isRuleEnabled(rule, cfg) {
			continue
		}

		result.RulesRun++
		result.Diagnostics = append(result.Diagnostics, d.run(rule)...)
	}

	return result, nil
}

// validate runs the pre-analysis file checks. A script the checks reject
// yields a file-level diagnostic and ok=false; other failures are errors.
// Bundles and standard input skip the checks.
func validate(path string, cfg *config.Config) (rules.Diagnostic, bool, error) {
	if path == "-" || hostast.IsBundlePath(path) {
		return rules.Diagnostic{}, true, nil
	}
	err := fileval.ValidateFile(path, cfg.FileValidation.MaxFileSize)
	if err == nil {
		return rules.Diagnostic{}, true, nil
	}

	var (
		tooLarge *fileval.FileTooLargeError
		binary   *fileval.BinaryFileError
		encoding *fileval.UnsupportedEncodingError
	)
	if errors.As(err, &tooLarge) || errors.As(err, &binary) || errors.As(err, &encoding) {
		return rules.NewFileDiagnostic(path, rules.FileValidationErrorName, err.Error(), rules.SeverityError), false, nil
	}
	return rules.Diagnostic{}, false, err
}

// dispatcher runs rules against one script.
type dispatcher struct {
	sess *session.Session
	root ast.Node
	file string
}

// run dispatches rule through every capability it implements. A failing or
// panicking rule loses only its own diagnostics.
func (d dispatcher) run(rule rules.Rule) (diags []rules.Diagnostic) {
	name := rule.Metadata().Name
	defer func() {
		if r := recover(); r != nil {
			diags = []rules.Diagnostic{d.ruleFailed(name, errors.Newf("panic: %v", r))}
		}
	}()

	caps := rules.Capabilities(rule)
	var out []rules.Diagnostic
	collect := func(seq iter.Seq[rules.Diagnostic], err error) error {
		if err != nil {
			return err
		}
		for diag := range seq {
			out = append(out, diag)
		}
		return nil
	}

	if caps.Has(rules.CapScript) {
		if err := collect(rule.(rules.ScriptAnalyzer).AnalyzeScript(d.sess, d.root, d.file)); err != nil {
			return []rules.Diagnostic{d.ruleFailed(name, err)}
		}
	}
	if caps.Has(rules.CapCommand) {
		ca := rule.(rules.CommandAnalyzer)
		for ref := range d.sess.CommandReferences(d.root) {
			if err := collect(ca.AnalyzeCommand(d.sess, ref.Info, ref.Extent, d.file)); err != nil {
				return []rules.Diagnostic{d.ruleFailed(name, err)}
			}
		}
	}
	if caps.Has(rules.CapDSCResource) && dsc.IsResource(d.root, d.file) {
		if err := collect(rule.(rules.DSCResourceAnalyzer).AnalyzeDSCResource(d.sess, d.root, d.file)); err != nil {
			return []rules.Diagnostic{d.ruleFailed(name, err)}
		}
	}
	if caps.Has(rules.CapDSCClass) && len(dsc.Classes(d.root)) > 0 {
		if err := collect(rule.(rules.DSCClassAnalyzer).AnalyzeDSCClass(d.sess, d.root, d.file)); err != nil {
			return []rules.Diagnostic{d.ruleFailed(name, err)}
		}
	}
	return out
}

func (d dispatcher) ruleFailed(name string, err error) rules.Diagnostic {
	logrus.WithFields(logrus.Fields{"rule": name, "file": d.file}).WithError(err).Error("linter: rule failed")
	return d.engineDiagnostic(
		rules.RuleExecutionErrorName,
		fmt.Sprintf("rule %s failed: %v", name, err),
		rules.SeverityInformation,
	)
}

// engineDiagnostic reports a problem with the run itself at file scope.
func (d dispatcher) engineDiagnostic(ruleName, msg string, sev rules.Severity) rules.Diagnostic {
	return rules.NewFileDiagnostic(d.file, ruleName, msg, sev)
}

// FileResult is the outcome of linting one path in [LintFiles].
type FileResult struct {
	Path   string
	Result *Result
	Err    error
}

// Options configures [LintFiles].
type Options struct {
	// Jobs limits concurrent files. Zero means GOMAXPROCS.
	Jobs int

	// Config, when non-nil, returns the configuration for a path. Nil
	// discovers each file's config.
	Config func(path string) (*config.Config, error)

	// Registry supplies the rules. If nil, the default registry is used.
	Registry *rules.Registry
}

// LintFiles lints paths concurrently. Per-file failures are reported in the
// matching FileResult; the returned error is only set when ctx is done.
// Results keep the order of paths.
func LintFiles(ctx context.Context, paths []string, opts Options) ([]FileResult, error) {
	results := make([]FileResult, len(paths))
	if len(paths) == 0 {
		return results, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			input := Input{FilePath: path, Registry: opts.Registry}
			if opts.Config != nil {
				cfg, err := opts.Config(path)
				if err != nil {
					results[i] = FileResult{Path: path, Err: err}
					return nil
				}
				input.Config = cfg
			}
			res, err := LintFile(gctx, input)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			// Each goroutine owns index i.
			results[i] = FileResult{Path: path, Result: res, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
