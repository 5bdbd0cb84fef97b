// Package model holds the data types shared across the compilation engine
// and the reverse-compilation pipeline: Element Record, File Record,
// Change Record, Output Section, Build Plan, and Analysis Record (spec §3).
package model

// ElementKind enumerates the top-level construct kinds the Structural
// Analyzer (C9) extracts and the Change Detector (C3) tracks.
type ElementKind string

const (
	KindFunction  ElementKind = "function"
	KindClass     ElementKind = "class"
	KindInterface ElementKind = "interface"
	KindType      ElementKind = "type"
	KindImport    ElementKind = "import"
	KindExport    ElementKind = "export"
)

// Element is one typed description of a top-level source construct.
// Created by the Structural Analyzer; mutated only by full replacement;
// destroyed when the Change Detector classifies it as deleted.
type Element struct {
	Name                string      `json:"name"`
	Kind                ElementKind `json:"kind"`
	StartLine           int         `json:"start_line"`
	EndLine             int         `json:"end_line"`
	CanonicalHash       string      `json:"canonical_hash"`
	DeclaredDependencies []string   `json:"declared_dependencies"`
	Exported            bool        `json:"exported"`
}

// File is one source file's record: its elements in start-line order, its
// content hash, and which generated outputs it feeds.
type File struct {
	SourcePath   string    `json:"source_path"`
	FileHash     string    `json:"file_hash"`
	Elements     []Element `json:"elements"`
	OutputPaths  []string  `json:"output_paths"`
	Language     string    `json:"language"`
}

// ElementChangeKind enumerates what happened to one element between two
// builds.
type ElementChangeKind string

const (
	ElementAdded    ElementChangeKind = "added"
	ElementModified ElementChangeKind = "modified"
	ElementDeleted  ElementChangeKind = "deleted"
)

// ElementChange describes one element's transition from the baseline to
// the current build.
type ElementChange struct {
	Name     string            `json:"name"`
	Kind     ElementKind       `json:"kind"`
	PrevHash string            `json:"prev_hash,omitempty"`
	NewHash  string            `json:"new_hash,omitempty"`
	Change   ElementChangeKind `json:"change"`
}

// FileChangeKind enumerates what happened to a whole file between builds.
type FileChangeKind string

const (
	FileAdded    FileChangeKind = "added"
	FileModified FileChangeKind = "modified"
	FileDeleted  FileChangeKind = "deleted"
)

// Change is one file's Change Record, produced by the Change Detector per
// build and read-only afterward.
type Change struct {
	SourcePath     string          `json:"source_path"`
	Kind           FileChangeKind  `json:"kind"`
	ElementChanges []ElementChange `json:"element_changes"`
}

// HasStructuralChange reports whether any element in this Change Record
// was added or deleted — the condition that forces a full rebuild
// (spec §4.C5 rule 4).
func (c Change) HasStructuralChange() bool {
	if c.Kind == FileAdded || c.Kind == FileDeleted {
		return true
	}
	for _, ec := range c.ElementChanges {
		if ec.Change == ElementAdded || ec.Change == ElementDeleted {
			return true
		}
	}
	return false
}

// SectionKind enumerates the recognizable top-level chunk types of a
// generated output file.
type SectionKind string

const (
	SectionImport   SectionKind = "import"
	SectionFunction SectionKind = "function"
	SectionClass    SectionKind = "class"
	SectionExport   SectionKind = "export"
	SectionOther    SectionKind = "other"
)

// Section is a contiguous, typed region of a generated output file — the
// unit the Incremental Generator splices.
type Section struct {
	Kind        SectionKind `json:"kind"`
	ElementName string      `json:"element_name,omitempty"`
	StartLine   int         `json:"start_line"`
	EndLine     int         `json:"end_line"`
	Text        string      `json:"text"`
	Hash        string      `json:"hash"`
}

// BuildMode enumerates the Build Planner's decision.
type BuildMode string

const (
	ModeIncremental BuildMode = "incremental"
	ModeFull        BuildMode = "full"
	ModeNoOp        BuildMode = "no-op"
)

// Plan is the Build Planner's output, consumed by the Incremental
// Generator.
type Plan struct {
	Mode      BuildMode `json:"mode"`
	Affected  []string  `json:"affected"`
	Impact    []string  `json:"impact"`
	Rationale string    `json:"rationale"`
}

// Analysis is the reverse-compilation pipeline's output for one file:
// structural extraction (C9) plus quality scoring (C10) plus a
// natural-language description (C11).
type Analysis struct {
	Language               string       `json:"language"`
	File                   string       `json:"file"`
	Functions              []Element    `json:"functions"`
	Classes                []Element    `json:"classes"`
	Interfaces             []Element    `json:"interfaces"`
	Types                  []Element    `json:"types"`
	Imports                []Element    `json:"imports"`
	Exports                []Element    `json:"exports"`
	Dependencies           []string     `json:"dependencies"`
	Patterns               []Pattern    `json:"patterns"`
	Complexity             int          `json:"complexity"`
	CognitiveComplexity    int          `json:"cognitive_complexity"`
	NestingDepth           int          `json:"nesting_depth"`
	Maintainability        int          `json:"maintainability"`
	Testability            int          `json:"testability"`
	Documentation          int          `json:"documentation"`
	NaturalLanguageDescription string  `json:"natural_language_description"`
}

// Pattern is one architectural pattern detected by the Quality & Content
// Analyzer, with supporting evidence.
type Pattern struct {
	Name       string   `json:"name"`
	Confidence int      `json:"confidence"`
	Evidence   []string `json:"evidence"`
}

// Clamp0To100 clamps v to the closed interval [0, 100] and rounds to the
// nearest integer, per spec §4.C10's "all scores are clamped ... and
// rounded".
func Clamp0To100(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v + 0.5)
}
