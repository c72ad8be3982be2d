// Package ui renders run results and the end-of-run summary.
package ui

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/0a3b/antseek/internal/config"
	"github.com/0a3b/antseek/internal/stats"
)

// Writer renders results in a configured output format.
type Writer struct {
	w      io.Writer
	format config.OutputFormat
}

// NewWriter creates a Writer for the given format.
func NewWriter(w io.Writer, format config.OutputFormat) *Writer {
	return &Writer{w: w, format: format}
}

// WritePaths prints one path per line, used by the list and
// compare-to-file modes.
func (wr *Writer) WritePaths(paths []string) {
	for _, p := range paths {
		fmt.Fprintln(wr.w, p)
	}
}

// WriteGroups renders duplicate groups. Group ids are emitted in ascending
// order; member order within a group is whatever the run produced.
func (wr *Writer) WriteGroups(groups map[int][]string) {
	ids := make([]int, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		if wr.format == config.FormatGrouped {
			fmt.Fprintf(wr.w, "Group ID: %d\n", id)
		}
		for _, p := range groups[id] {
			switch wr.format {
			case config.FormatGrouped:
				fmt.Fprintf(wr.w, "  %s\n", p)
			case config.FormatTSV:
				fmt.Fprintf(wr.w, "%d\t%s\n", id, p)
			case config.FormatPipe:
				fmt.Fprintf(wr.w, "%d|%s\n", id, p)
			}
		}
	}
}

// Summary formats a one-line run summary from a stats snapshot.
func Summary(s stats.Snapshot) string {
	line := fmt.Sprintf(
		"scanned %d directories, matched %d files, hashed %d files (%s), compared %d pairs (%d skipped) in %s",
		s.DirsScanned, s.FilesMatched, s.FilesHashed, stats.FormatBytes(s.BytesHashed),
		s.PairsCompared, s.PairsSkipped, s.Elapsed.Round(time.Millisecond),
	)
	if s.IOErrors > 0 {
		line += fmt.Sprintf(", %d I/O errors", s.IOErrors)
	}
	return line
}
