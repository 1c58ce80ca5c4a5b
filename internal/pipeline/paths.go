package pipeline

import (
	"path/filepath"

	"github.com/chrissnell/stormtide/internal/archive"
	"github.com/chrissnell/stormtide/internal/report"
)

// Paths names every file a run produces under one base path.
type Paths struct {
	base string
}

// NewPaths roots the run's outputs at dir/name.
func NewPaths(dir, name string) Paths {
	return Paths{base: filepath.Join(dir, name)}
}

// Archive is the full converted record of a role.
func (p Paths) Archive(r Role) string { return p.base + "_" + string(r) + archive.Extension }

// Chopped is a role's record trimmed to its good-data window.
func (p Paths) Chopped(r Role) string { return p.base + "_" + string(r) + "_chop" + archive.Extension }

// Overlap is a role's record trimmed to the pair's overlap.
func (p Paths) Overlap(r Role) string { return p.base + "_" + string(r) + "_storm" + archive.Extension }

func (p Paths) Unfiltered() string { return p.base + "_stormtide_unfiltered" + archive.Extension }
func (p Paths) StormTide() string  { return p.base + "_stormtide" + archive.Extension }
func (p Paths) Workbook() string   { return p.base + "_stormtide.xlsx" }
func (p Paths) PDF() string        { return p.base + "_stormtide.pdf" }

// Sidecar is the summary in the given encoding.
func (p Paths) Sidecar(format string) string {
	return p.base + "_stormtide" + report.SidecarExtension(format)
}
