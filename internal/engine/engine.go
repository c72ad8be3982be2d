// Package engine implements the duplicate-detection and content-search
// pipeline: parallel directory traversal feeding a deduplicating file
// queue, a hashing stage feeding a pairing queue, and a comparison stage
// backed by an equivalence-class tracker.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/0a3b/antseek/internal/config"
	"github.com/0a3b/antseek/internal/event"
	"github.com/0a3b/antseek/internal/filter"
	"github.com/0a3b/antseek/internal/mask"
	"github.com/0a3b/antseek/internal/queue"
	"github.com/0a3b/antseek/internal/stats"
)

// Config describes a search run.
type Config struct {
	Options  *config.Options
	Patterns *filter.Patterns

	// Worker counts per stage: directory collectors, chunk hashers, byte
	// comparers. Zero values fall back to one worker.
	Collectors int
	Hashers    int
	Comparers  int

	Stats *stats.Collector

	// Events receives progress notifications when non-nil. Sends never
	// block; a full channel drops the event.
	Events chan<- event.Event
}

// Engine drives the pipeline for one run. Construct with New, launch with
// Start, then Wait for the workers to drain. Results are read back with
// Results or GroupedResults depending on the operation mode.
type Engine struct {
	cfg  Config
	opts *config.Options

	dirQueue  *queue.TreeQueue[string]
	fileQueue *queue.FileQueue[CompositeKey, FileRecord]
	pairQueue *queue.PairQueue[CompositeKey, FileRecord]
	groups    *GroupHandler

	// fileShape keys the dedup queue at the enqueue stage, before any hash
	// exists; pairShape adds the hash field for the pairing stage.
	fileShape KeyShape
	pairShape KeyShape

	// Reference file state for compare-to-file mode.
	refName string
	refSize int64
	refData []byte
	refMask mask.Mask
	refHash uint64

	resultsMu sync.Mutex
	results   []string

	activeCollectors atomic.Int32
	activeHashers    atomic.Int32

	stopOnce sync.Once
	stopped  atomic.Bool

	wg      sync.WaitGroup
	ctxStop func() bool
}

// New validates nothing beyond what it needs: the options are assumed to
// have passed config validation. In compare-to-file mode the reference
// file is loaded here so a bad reference fails before any worker starts.
func New(cfg Config) (*Engine, error) {
	opts := cfg.Options
	if cfg.Collectors <= 0 {
		cfg.Collectors = 1
	}
	if cfg.Hashers <= 0 {
		cfg.Hashers = 1
	}
	if cfg.Comparers <= 0 {
		cfg.Comparers = 1
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}

	e := &Engine{
		cfg:       cfg,
		opts:      opts,
		dirQueue:  queue.NewTreeQueue[string](cfg.Collectors),
		fileQueue: queue.NewFileQueue[CompositeKey, FileRecord](),
		pairQueue: queue.NewPairQueue[CompositeKey, FileRecord](),
		groups:    NewGroupHandler(),
	}

	if opts.MatchSize {
		e.fileShape |= KeySize
	}
	if opts.MatchFilename {
		e.fileShape |= KeyName
	}
	e.pairShape = e.fileShape
	if opts.HashMode != config.HashNone {
		e.pairShape |= KeyHash
	}

	if opts.OperationMode == config.ModeCompareToFile {
		if err := e.loadReference(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Engine) loadReference() error {
	data, err := os.ReadFile(e.opts.CompareToFile)
	if err != nil {
		return fmt.Errorf("read reference file %s: %w", e.opts.CompareToFile, err)
	}
	e.refData = data
	e.refSize = int64(len(data))
	e.refName = filepath.Base(e.opts.CompareToFile)
	e.refMask = mask.Synthesize(data, e.opts.JokerBytes)

	if e.opts.HashMode != config.HashNone {
		h, err := hashFileChunk(e.opts.CompareToFile, e.refSize, e.opts.HashSize, e.opts.HashMode == config.HashFirst)
		if err != nil {
			return fmt.Errorf("hash reference file: %w", err)
		}
		e.refHash = h
	}
	return nil
}

// Start seeds the traversal queue with the configured roots and launches
// the worker pools for the selected operation mode. Roots that do not
// exist or are not directories are reported and skipped.
func (e *Engine) Start(ctx context.Context) {
	e.ctxStop = context.AfterFunc(ctx, e.RequestStop)

	for _, d := range e.opts.Directories {
		info, err := os.Stat(d)
		switch {
		case err != nil:
			slog.Error("directory does not exist", "path", d)
			continue
		case !info.IsDir():
			slog.Error("not a directory", "path", d)
			continue
		}
		e.dirQueue.Push(d)
	}

	e.emit(event.Event{Type: event.ScanStarted})

	e.activeCollectors.Store(int32(e.cfg.Collectors))
	for i := 0; i < e.cfg.Collectors; i++ {
		e.wg.Add(1)
		go e.collectorWorker(i)
	}

	switch e.opts.OperationMode {
	case config.ModeListFiles:
		// Traversal alone produces the result set.
	case config.ModeAllVsAll:
		e.activeHashers.Store(int32(e.cfg.Hashers))
		for i := 0; i < e.cfg.Hashers; i++ {
			e.wg.Add(1)
			go e.hashWorker(i)
		}
		if e.opts.MatchContent != config.ContentNone {
			for i := 0; i < e.cfg.Comparers; i++ {
				e.wg.Add(1)
				go e.compareWorker(i)
			}
		}
	case config.ModeCompareToFile:
		for i := 0; i < e.cfg.Comparers; i++ {
			e.wg.Add(1)
			go e.flexCompareWorker(i)
		}
	}
}

// RequestStop cancels the run cooperatively: blocked pops return false and
// in-flight work aborts at its next checkpoint. Results recorded so far
// are kept.
func (e *Engine) RequestStop() {
	e.stopOnce.Do(func() {
		e.stopped.Store(true)
		e.dirQueue.Cancel()
		e.fileQueue.Cancel()
		e.pairQueue.Cancel()
	})
}

// Wait blocks until every worker has exited.
func (e *Engine) Wait() {
	e.wg.Wait()
	if e.ctxStop != nil {
		e.ctxStop()
	}
	e.emit(event.Event{Type: event.RunComplete})
}

// Results returns the collected paths. Meaningful in list and
// compare-to-file modes.
func (e *Engine) Results() []string {
	e.resultsMu.Lock()
	defer e.resultsMu.Unlock()
	return append([]string(nil), e.results...)
}

// GroupedResults returns the duplicate groups of an all-vs-all run. With a
// content comparison the group handler is the source of truth; otherwise
// the pairing queue's store is, filtered to groups of two or more.
func (e *Engine) GroupedResults() map[int][]string {
	if e.opts.MatchContent != config.ContentNone {
		return e.groups.BuildGroupedList()
	}

	grouped := make(map[int][]string)
	for id, records := range e.pairQueue.BuildGroupedList() {
		if len(records) < 2 {
			continue
		}
		paths := make([]string, len(records))
		for i, rec := range records {
			paths[i] = rec.Path
		}
		grouped[id] = paths
	}
	return grouped
}

func (e *Engine) collectorWorker(id int) {
	defer e.wg.Done()

	for {
		dir, ok := e.dirQueue.Pop()
		if !ok {
			break
		}
		e.scanDir(id, dir)
	}

	if e.activeCollectors.Add(-1) == 0 {
		e.fileQueue.SetFinished()
	}
}

func (e *Engine) scanDir(workerID int, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		e.cfg.Stats.AddIOErrors(1)
		slog.Error("read directory", "path", dir, "error", err)
		e.emit(event.Event{Type: event.FileFailed, Path: dir, Error: err, WorkerID: workerID})
		return
	}
	e.cfg.Stats.AddDirsScanned(1)
	e.emit(event.Event{Type: event.DirScanned, Path: dir, WorkerID: workerID})

	for _, entry := range entries {
		if e.stopped.Load() {
			return
		}

		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			e.dirQueue.Push(path)
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}
		if !e.cfg.Patterns.MatchAny(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			e.cfg.Stats.AddIOErrors(1)
			slog.Warn("stat file", "path", path, "error", err)
			continue
		}
		rec := FileRecord{Path: path, Size: info.Size()}
		e.cfg.Stats.AddFilesMatched(1)
		e.emit(event.Event{Type: event.FileMatched, Path: path, Size: rec.Size, WorkerID: workerID})

		switch e.opts.OperationMode {
		case config.ModeListFiles:
			e.appendResult(path)
		case config.ModeCompareToFile:
			if e.acceptCandidate(rec, entry.Name()) {
				e.fileQueue.PushPassthrough(rec)
			}
		case config.ModeAllVsAll:
			if e.fileShape == 0 {
				e.fileQueue.PushPassthrough(rec)
			} else {
				e.fileQueue.Push(makeKey(e.fileShape, rec, 0), rec)
			}
		}
	}
}

// acceptCandidate prefilters a file against the reference's attributes so
// the comparison stage only sees plausible candidates.
func (e *Engine) acceptCandidate(rec FileRecord, name string) bool {
	if rec.Size < e.refSize {
		return false
	}
	if e.opts.MatchContent == config.ContentFull && rec.Size != e.refSize {
		return false
	}
	if e.opts.MatchSize && rec.Size != e.refSize {
		return false
	}
	if e.opts.MatchFilename && name != e.refName {
		return false
	}
	if e.opts.HashMode != config.HashNone {
		h, err := hashFileChunk(rec.Path, rec.Size, e.opts.HashSize, e.opts.HashMode == config.HashFirst)
		if err != nil {
			e.cfg.Stats.AddIOErrors(1)
			slog.Warn("hash file", "path", rec.Path, "error", err)
			return false
		}
		e.cfg.Stats.AddFilesHashed(1)
		if h != e.refHash {
			return false
		}
	}
	return true
}

func (e *Engine) hashWorker(id int) {
	defer e.wg.Done()

	// Without a content comparison the pairing stage only collects; the
	// grouping store itself is the final answer.
	justCollect := e.opts.MatchContent == config.ContentNone

	for {
		rec, ok := e.fileQueue.Pop()
		if !ok {
			break
		}

		var hash uint64
		if e.opts.HashMode != config.HashNone {
			h, err := hashFileChunk(rec.Path, rec.Size, e.opts.HashSize, e.opts.HashMode == config.HashFirst)
			if err != nil {
				e.cfg.Stats.AddIOErrors(1)
				slog.Warn("hash file", "path", rec.Path, "error", err)
				e.emit(event.Event{Type: event.FileFailed, Path: rec.Path, Error: err, WorkerID: id})
				continue
			}
			hash = h
			e.cfg.Stats.AddFilesHashed(1)
			e.cfg.Stats.AddBytesHashed(min(rec.Size, e.opts.HashSize))
			e.emit(event.Event{Type: event.FileHashed, Path: rec.Path, Size: rec.Size, WorkerID: id})
		}

		if e.pairShape == 0 {
			e.pairQueue.PushPassthrough(rec)
		} else {
			e.pairQueue.Push(makeKey(e.pairShape, rec, hash), rec, justCollect)
		}
	}

	if e.activeHashers.Add(-1) == 0 {
		e.pairQueue.SetFinished()
	}
}

func (e *Engine) compareWorker(id int) {
	defer e.wg.Done()

	for {
		pair, ok := e.pairQueue.Pop()
		if !ok {
			break
		}

		if e.groups.ShouldItProcess(pair.A.Path, pair.B.Path) {
			res, err := compareFileContents(pair.A, pair.B, e.stopped.Load)
			switch res {
			case compareMatch:
				e.groups.AddSame(pair.A.Path, pair.B.Path)
			case compareNoMatch:
				e.groups.AddDifferent(pair.A.Path, pair.B.Path)
			case compareError:
				e.cfg.Stats.AddIOErrors(1)
				slog.Error("compare files", "left", pair.A.Path, "right", pair.B.Path, "error", err)
			}
			e.cfg.Stats.AddPairsCompared(1)
			e.cfg.Stats.AddBytesCompared(pair.A.Size)
			e.emit(event.Event{Type: event.PairCompared, Path: pair.A.Path, Other: pair.B.Path, WorkerID: id})
		} else {
			e.cfg.Stats.AddPairsSkipped(1)
		}

		e.pairQueue.SetProcessed(pair)
	}
}

func (e *Engine) flexCompareWorker(id int) {
	defer e.wg.Done()

	for {
		rec, ok := e.fileQueue.Pop()
		if !ok {
			break
		}

		var matched bool
		var err error
		switch e.opts.MatchContent {
		case config.ContentBegin, config.ContentFull:
			matched, err = mask.MatchFile(rec.Path, e.refData, e.refMask, false)
		case config.ContentEnd:
			matched, err = mask.MatchFile(rec.Path, e.refData, e.refMask, true)
		case config.ContentFind:
			matched, err = mask.FindInFile(rec.Path, e.refData, e.refMask, 0)
		}
		if err != nil {
			e.cfg.Stats.AddIOErrors(1)
			slog.Error("compare against reference", "path", rec.Path, "error", err)
			e.emit(event.Event{Type: event.FileFailed, Path: rec.Path, Error: err, WorkerID: id})
			continue
		}
		e.cfg.Stats.AddPairsCompared(1)
		if matched {
			e.appendResult(rec.Path)
			e.emit(event.Event{Type: event.FileAccepted, Path: rec.Path, Size: rec.Size, WorkerID: id})
		}
	}
}

func (e *Engine) appendResult(path string) {
	e.resultsMu.Lock()
	e.results = append(e.results, path)
	e.resultsMu.Unlock()
}

func (e *Engine) emit(ev event.Event) {
	if e.cfg.Events == nil {
		return
	}
	ev.Timestamp = time.Now()
	select {
	case e.cfg.Events <- ev:
	default:
	}
}
