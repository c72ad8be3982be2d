// Package config defines the validated run configuration and the optional
// defaults file.
package config

import (
	"errors"
	"fmt"
)

// MatchContent selects how file contents participate in matching.
type MatchContent int

const (
	ContentNone MatchContent = iota
	ContentFull
	ContentBegin
	ContentEnd
	ContentFind
)

// ParseMatchContent parses a --compare-content value.
func ParseMatchContent(s string) (MatchContent, error) {
	switch s {
	case "full":
		return ContentFull, nil
	case "begin":
		return ContentBegin, nil
	case "end":
		return ContentEnd, nil
	case "find":
		return ContentFind, nil
	}
	return ContentNone, fmt.Errorf("invalid value for --compare-content: %q", s)
}

// HashMode selects which end of a file the chunk hash covers.
type HashMode int

const (
	HashNone HashMode = iota
	HashFirst
	HashLast
)

// ParseHashMode parses a --match-hash value.
func ParseHashMode(s string) (HashMode, error) {
	switch s {
	case "first":
		return HashFirst, nil
	case "last":
		return HashLast, nil
	}
	return HashNone, fmt.Errorf("invalid value for --match-hash: %q", s)
}

// OperationMode selects what the run does with matched files.
type OperationMode int

const (
	ModeListFiles OperationMode = iota
	ModeCompareToFile
	ModeAllVsAll
)

// OutputFormat selects how grouped results are rendered.
type OutputFormat int

const (
	FormatPipe OutputFormat = iota
	FormatTSV
	FormatGrouped
)

// ParseOutputFormat parses an --output-format value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch s {
	case "pipe":
		return FormatPipe, nil
	case "tsv":
		return FormatTSV, nil
	case "grouped":
		return FormatGrouped, nil
	}
	return FormatPipe, fmt.Errorf("invalid value for --output-format: %q", s)
}

// DefaultHashSize is the chunk size hashed when --hash-size is not given.
const DefaultHashSize = 4096

// Options is the full run configuration after flag and defaults-file
// resolution.
type Options struct {
	Directories      []string
	FilenamePatterns []string
	MatchFilename    bool
	MatchSize        bool
	MatchContent     MatchContent
	HashMode         HashMode
	HashSize         int64
	JokerBytes       []byte
	OperationMode    OperationMode
	OutputFormat     OutputFormat
	CompareToFile    string
	Workers          int
}

// Validate checks option combinations. The CLI layer resolves the operation
// mode before calling it, so mutual exclusivity of --compare-everything and
// --compare-to is enforced there.
func (o *Options) Validate() error {
	if len(o.Directories) == 0 {
		return errors.New("no directories specified")
	}
	if len(o.FilenamePatterns) == 0 {
		return errors.New("no filename patterns specified")
	}
	if len(o.JokerBytes) > 0 && o.OperationMode != ModeCompareToFile {
		return errors.New("--set-joker requires --compare-to")
	}
	if o.OperationMode == ModeCompareToFile {
		if o.CompareToFile == "" {
			return errors.New("--compare-to requires a file path")
		}
		if o.MatchContent == ContentNone {
			return errors.New("--compare-to requires --compare-content")
		}
	}
	if o.OperationMode == ModeAllVsAll {
		if !o.MatchFilename && !o.MatchSize && o.HashMode == HashNone && o.MatchContent == ContentNone {
			return errors.New("--compare-everything requires at least one of --match-filenames, --match-size, --match-hash, or --compare-content")
		}
		if o.MatchContent != ContentNone && o.MatchContent != ContentFull {
			return errors.New("--compare-everything can only be combined with --compare-content full")
		}
	}
	if o.HashMode != HashNone && o.HashSize <= 0 {
		return errors.New("--match-hash requires a positive hash size")
	}
	return nil
}

// ApplyPerformanceFloor enables size matching and first-chunk hashing for a
// full-content all-vs-all run. The extra keys only prune candidate pairs;
// the visible output is unchanged.
func (o *Options) ApplyPerformanceFloor() {
	if o.OperationMode != ModeAllVsAll || o.MatchContent != ContentFull {
		return
	}
	o.MatchSize = true
	if o.HashMode == HashNone {
		o.HashMode = HashFirst
		if o.HashSize <= 0 {
			o.HashSize = DefaultHashSize
		}
	}
}
