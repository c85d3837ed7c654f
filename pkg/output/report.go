package output

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carvekit/carve/pkg/extract"
)

// ReportFileName is the report's filename inside the output artifact.
const ReportFileName = "carve-report.md"

// Report is the structured summary of one extraction run. It is
// rendered to markdown for the output artifact and serialized to JSON
// by the serve API.
type Report struct {
	RunID       string                       `json:"run_id"`
	GeneratedAt time.Time                    `json:"generated_at"`
	Entries     []string                     `json:"entries"`
	TotalFiles  int                          `json:"total_files"`
	PerEntry    map[string]int               `json:"per_entry"`
	Files       []string                     `json:"files"`
	Packages    map[string][]extract.Package `json:"packages,omitempty"`
	Warnings    []extract.Warning            `json:"warnings,omitempty"`
}

// NewReport assembles the report for a finished run.
func NewReport(job *extract.Job, res *extract.Result) *Report {
	r := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Entries:     append([]string(nil), job.Entries...),
		TotalFiles:  res.Len(),
		PerEntry:    res.CountByEntry(),
		Packages:    make(map[string][]extract.Package),
		Warnings:    res.Warnings(),
	}
	for _, f := range res.Files() {
		r.Files = append(r.Files, f.Rel)
	}
	for _, lang := range res.Languages() {
		r.Packages[lang] = res.Packages(lang)
	}
	return r
}

// Markdown renders the report as a human-readable document.
func (r *Report) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Extraction Report\n\n")
	fmt.Fprintf(&b, "- **Run:** `%s`\n", r.RunID)
	fmt.Fprintf(&b, "- **Generated:** %s\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Entry points:** %s\n", strings.Join(r.Entries, ", "))
	fmt.Fprintf(&b, "- **Files included:** %d\n", r.TotalFiles)

	if len(r.PerEntry) > 0 {
		b.WriteString("\n## Files per entry point\n\n")
		entries := make([]string, 0, len(r.PerEntry))
		for e := range r.PerEntry {
			entries = append(entries, e)
		}
		sort.Strings(entries)
		for _, e := range entries {
			fmt.Fprintf(&b, "- `%s`: %d\n", e, r.PerEntry[e])
		}
	}

	b.WriteString("\n## Included files\n\n```\n")
	for _, f := range r.Files {
		fmt.Fprintf(&b, "%s\n", f)
	}
	b.WriteString("```\n")

	b.WriteString("\n## External packages\n\n")
	if len(r.Packages) == 0 {
		b.WriteString("None found.\n")
	}
	langs := make([]string, 0, len(r.Packages))
	for lang := range r.Packages {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	for _, lang := range langs {
		fmt.Fprintf(&b, "### %s (`%s`)\n\n```\n", lang, ManifestName(lang))
		for _, pkg := range r.Packages[lang] {
			fmt.Fprintf(&b, "%s\n", pkg)
		}
		b.WriteString("```\n\n")
	}

	b.WriteString("## Warnings\n\n")
	if len(r.Warnings) == 0 {
		b.WriteString("None.\n")
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "- %s\n", w)
	}

	return b.String()
}
