package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/carvekit/carve/pkg/errors"
	"github.com/carvekit/carve/pkg/extract"
	"github.com/carvekit/carve/pkg/extract/csharp"
	"github.com/carvekit/carve/pkg/extract/python"
	"github.com/carvekit/carve/pkg/graph"
	"github.com/carvekit/carve/pkg/output"
)

// languages is the list of supported source languages.
// Each language provides an extractor and manifest readers.
var languages = extract.Registry{
	python.Language,
	csharp.Language,
}

// extractOpts holds the command-line flags for the extract command.
type extractOpts struct {
	roots       []string // project roots searched for local resolution
	ignoreDirs  []string // directory names excluded as path segments
	ignoreFiles []string // glob patterns excluded by file name
	direct      bool     // direct dependencies only, no transitive expansion
	outputDir   string   // destination directory for the carved tree
	archive     string   // destination zip archive
	report      bool     // include the markdown summary report
	graphOut    string   // write the file graph as JSON
	config      string   // JSON job file; flags override its values
	review      bool     // open the interactive warning browser after the run
}

// newExtractCmd creates the extract command.
func newExtractCmd() *cobra.Command {
	var opts extractOpts

	cmd := &cobra.Command{
		Use:   "extract <entry-file>...",
		Short: "Extract the dependency closure of one or more entry files",
		Long: `Extract walks one or more entry files, follows their imports and type
references across the project roots, and collects the minimal set of local
files plus the external packages they depend on.

Examples:
  carve extract src/app/main.py -r src -o carved/
  carve extract Service.cs -r src -r shared --ignore-dir bin --ignore-dir obj -z service.zip
  carve extract main.py -r . --direct --report -o out/
  carve extract --config job.json`,
		Args: cobra.ArbitraryArgs,
		RunE: func(c *cobra.Command, args []string) error {
			job, err := buildJob(args, &opts)
			if err != nil {
				return err
			}
			return runExtract(c.Context(), job, &opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.roots, "root", "r", nil, "project root directory (repeatable)")
	cmd.Flags().StringArrayVar(&opts.ignoreDirs, "ignore-dir", nil, "directory name to exclude (repeatable)")
	cmd.Flags().StringArrayVar(&opts.ignoreFiles, "ignore-file", nil, "file glob to exclude (repeatable)")
	cmd.Flags().BoolVar(&opts.direct, "direct", false, "collect direct dependencies only")
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "destination directory for the carved files")
	cmd.Flags().StringVarP(&opts.archive, "zip", "z", "", "destination zip archive")
	cmd.Flags().BoolVar(&opts.report, "report", false, "include a markdown summary report in the output")
	cmd.Flags().StringVar(&opts.graphOut, "graph", "", "write the file dependency graph as JSON")
	cmd.Flags().StringVar(&opts.config, "config", "", "JSON job file (flags override its values)")
	cmd.Flags().BoolVar(&opts.review, "review", false, "browse warnings interactively after the run")

	return cmd
}

// buildJob assembles the extraction job from the optional config file and
// the command-line flags. Flag values are appended to (lists) or override
// (scalars) the config file values.
func buildJob(entries []string, opts *extractOpts) (*extract.Job, error) {
	job := &extract.Job{}
	if opts.config != "" {
		data, err := os.ReadFile(opts.config)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidJob, err, "reading config file")
		}
		if err := json.Unmarshal(data, job); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidJob, err, "parsing config file")
		}
	}

	job.Entries = append(job.Entries, entries...)
	job.Roots = append(job.Roots, opts.roots...)
	job.IgnoreDirs = append(job.IgnoreDirs, opts.ignoreDirs...)
	job.IgnoreFiles = append(job.IgnoreFiles, opts.ignoreFiles...)
	if opts.direct {
		job.Direct = true
	}
	if opts.outputDir != "" {
		job.OutputDir = opts.outputDir
	}
	if opts.archive != "" {
		job.ArchivePath = opts.archive
	}
	if opts.report {
		job.Report = true
	}
	return job, nil
}

// runExtract executes the closure traversal and materializes the result.
func runExtract(ctx context.Context, job *extract.Job, opts *extractOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	spinner := newSpinnerWithContext(ctx, "Collecting dependency closure...")
	spinner.Start()

	res, err := extract.NewResolver(job, languages, extract.Options{
		Logf: func(msg string, args ...any) { logger.Debugf(msg, args...) },
	}).Run(ctx)
	spinner.Stop()
	if err != nil {
		if spinner.Cancelled() {
			return ctx.Err()
		}
		return err
	}
	prog.done(fmt.Sprintf("Collected %d files", res.Len()))

	_, err = output.Materialize(res, job, output.Options{
		OutputDir:   job.OutputDir,
		ArchivePath: job.ArchivePath,
		Report:      job.Report,
		Logf:        func(msg string, args ...any) { logger.Debugf(msg, args...) },
	})
	if err != nil {
		return err
	}

	if opts.graphOut != "" {
		if err := graph.WriteFile(graph.FromResult(res), opts.graphOut); err != nil {
			return err
		}
	}

	printSummary(res, job, opts)

	if opts.review && len(res.Warnings()) > 0 {
		return reviewWarnings(res.Warnings())
	}
	return nil
}

// printSummary prints the post-run summary to stdout.
func printSummary(res *extract.Result, job *extract.Job, opts *extractOpts) {
	pkgCount := 0
	for _, lang := range res.Languages() {
		pkgCount += len(res.Packages(lang))
	}

	printSuccess("Extraction complete")
	printStats(res.Len(), pkgCount, len(res.Warnings()))

	counts := res.CountByEntry()
	entries := make([]string, 0, len(counts))
	for entry := range counts {
		entries = append(entries, entry)
	}
	sort.Strings(entries)
	for _, entry := range entries {
		printDetail("%s: %d files", filepath.Base(entry), counts[entry])
	}

	if job.OutputDir != "" {
		printFile(job.OutputDir)
	}
	if job.ArchivePath != "" {
		printFile(job.ArchivePath)
	}
	if opts.graphOut != "" {
		printFile(opts.graphOut)
		printNewline()
		printNextStep("Render the graph", fmt.Sprintf("carve graph %s -o deps.svg", opts.graphOut))
	}

	for _, w := range res.Warnings() {
		printWarning("%s", w.String())
	}
}
