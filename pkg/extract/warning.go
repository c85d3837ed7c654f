package extract

import "fmt"

// WarningKind classifies the recoverable conditions a run can accumulate.
type WarningKind string

const (
	// WarnUnreadable marks a file that could not be read or decoded.
	WarnUnreadable WarningKind = "unreadable"
	// WarnSyntax marks a file whose syntax tree could not be parsed.
	// The file is still included in the result but contributes no edges.
	WarnSyntax WarningKind = "syntax-error"
	// WarnUnresolved marks a reference that matched neither a local file
	// nor a declared external package.
	WarnUnresolved WarningKind = "unresolved-reference"
	// WarnAmbiguous marks a symbol that matched multiple indexed files
	// with no disambiguating namespace import.
	WarnAmbiguous WarningKind = "ambiguous-symbol"
	// WarnVersionConflict marks two occurrences of the same external
	// package disagreeing on version. The first observed version wins.
	WarnVersionConflict WarningKind = "version-conflict"
	// WarnPathCollision marks two distinct files mapping to the same
	// output-relative path. The first file wins; the second is skipped.
	WarnPathCollision WarningKind = "path-collision"
	// WarnIgnoredReference marks a reference that resolved to a file
	// excluded by the ignore filter. The file is never included.
	WarnIgnoredReference WarningKind = "ignored-reference"
	// WarnOutsideRoots marks an included file that lies under none of
	// the project roots; its output path falls back to the base name.
	WarnOutsideRoots WarningKind = "outside-roots"
)

// Warning records one recoverable condition with enough context to act on.
type Warning struct {
	Kind   WarningKind `json:"kind"`
	Path   string      `json:"path,omitempty"`   // file the condition applies to
	Detail string      `json:"detail,omitempty"` // human-readable specifics
}

// String formats the warning for logs and reports.
func (w Warning) String() string {
	if w.Path == "" {
		return fmt.Sprintf("[%s] %s", w.Kind, w.Detail)
	}
	return fmt.Sprintf("[%s] %s: %s", w.Kind, w.Path, w.Detail)
}

// Warningf builds a Warning with a formatted detail message.
func Warningf(kind WarningKind, path, format string, args ...any) Warning {
	return Warning{Kind: kind, Path: path, Detail: fmt.Sprintf(format, args...)}
}
