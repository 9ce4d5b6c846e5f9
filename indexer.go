package main

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/avrillon/normrag/docstore"
	"github.com/avrillon/normrag/parsers"
	"github.com/avrillon/normrag/state"
)

type DocStore interface {
	Replace(ctx context.Context, doc docstore.Doc) error
	Remove(ctx context.Context, path string) error
	Search(ctx context.Context, query string) ([]docstore.SearchResult, error)
}

type RecordStore interface {
	Get(ctx context.Context, path string) (*state.Record, error)
	Put(ctx context.Context, rec state.Record) error
	Delete(ctx context.Context, path string) error
	All(ctx context.Context) ([]state.Record, error)
}

// Indexer walks a document root and keeps the vector store and the record
// store in sync with it, one document at a time. A record is written only
// after the document's chunks are replaced, so an interrupted run never
// leaves a record pointing at missing chunks.
type Indexer struct {
	log              *slog.Logger
	root             string
	chunker          *Chunker
	parsers          []parsers.Parser
	store            DocStore
	state            RecordStore
	mergeEventsDelay time.Duration
}

func NewIndexer(cfg *Config, log *slog.Logger, store DocStore, records RecordStore) *Indexer {
	return &Indexer{
		log:              log,
		root:             cfg.DataDir,
		chunker:          NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		parsers:          parsers.Default(),
		store:            store,
		state:            records,
		mergeEventsDelay: time.Duration(cfg.MergeEventsMs) * time.Millisecond,
	}
}

type Options struct {
	// Force reindexes every document regardless of stored hashes.
	Force bool
	// Prune removes records and chunks of documents deleted from disk.
	Prune bool
}

type Failure struct {
	File string
	Err  error
}

type Summary struct {
	Indexed  int
	Skipped  int
	Failed   int
	Pruned   int
	Failures []Failure
}

// Run indexes every supported file under the root. Per-document failures are
// logged and counted; only a broken walk or a cancelled context aborts the
// batch.
func (ix *Indexer) Run(ctx context.Context, opts Options) (Summary, error) {
	var sum Summary

	err := filepath.WalkDir(ix.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		parser, err := parsers.ForPath(ix.parsers, path)
		if err != nil {
			ix.log.Warn("skipping unsupported file", "path", path)
			return nil
		}

		if err := ix.indexFile(ctx, parser, path, opts.Force, &sum); err != nil {
			ix.log.Warn("failed to index document", "path", path, "error", err)
			sum.Failed++
			sum.Failures = append(sum.Failures, Failure{File: path, Err: err})
		}

		return nil
	})
	if err != nil {
		return sum, fmt.Errorf("walking %s: %w", ix.root, err)
	}

	if opts.Prune {
		if err := ix.prune(ctx, &sum); err != nil {
			return sum, err
		}
	}

	ix.log.Info("indexing run complete",
		"indexed", sum.Indexed,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"pruned", sum.Pruned)

	return sum, nil
}

func (ix *Indexer) indexFile(ctx context.Context, parser parsers.Parser, path string, force bool, sum *Summary) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	crc := crc32.Checksum(data, crc32.IEEETable)

	rec, err := ix.state.Get(ctx, path)
	if err != nil {
		return err
	}
	if rec != nil && rec.Crc == crc && !force {
		sum.Skipped++
		return nil
	}

	units, err := parser.Parse(path)
	if err != nil {
		return err
	}

	chunks := ix.chunker.Chunk(units)
	category := Classify(path)

	doc := docstore.Doc{
		File:     path,
		Crc:      crc,
		Category: string(category),
		Chunks:   make([]docstore.Chunk, 0, len(chunks)),
	}
	for i, c := range chunks {
		doc.Chunks = append(doc.Chunks, docstore.Chunk{
			ID:        chunkID(path, i, crc),
			Text:      c.Text,
			Locations: c.Locations,
		})
	}

	if err := ix.store.Replace(ctx, doc); err != nil {
		return err
	}

	err = ix.state.Put(ctx, state.Record{
		Path:       path,
		Crc:        crc,
		IndexedAt:  time.Now(),
		ChunkCount: len(chunks),
	})
	if err != nil {
		return err
	}

	sum.Indexed++
	ix.log.Info("indexed document", "path", path, "chunks", len(chunks), "category", category)
	return nil
}

// prune forgets documents whose files no longer exist under the root.
func (ix *Indexer) prune(ctx context.Context, sum *Summary) error {
	recs, err := ix.state.All(ctx)
	if err != nil {
		return err
	}

	for _, rec := range recs {
		if _, err := os.Stat(rec.Path); !errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err := ix.store.Remove(ctx, rec.Path); err != nil {
			return err
		}
		if err := ix.state.Delete(ctx, rec.Path); err != nil {
			return err
		}

		sum.Pruned++
		ix.log.Info("pruned removed document", "path", rec.Path)
	}

	return nil
}

// Watch reruns indexing whenever files change under the root, merging bursts
// of events into one run. Returns when ctx is cancelled.
func (ix *Indexer) Watch(ctx context.Context, opts Options) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	err = filepath.WalkDir(ix.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watching %s: %w", ix.root, err)
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = watcher.Add(ev.Name)
				}
			}
			pending = time.After(ix.mergeEventsDelay)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			ix.log.Warn("watch error", "error", err)
		case <-pending:
			pending = nil
			if _, err := ix.Run(ctx, opts); err != nil {
				ix.log.Error("indexing run failed", "error", err)
			}
		}
	}
}

// chunkID derives a stable identifier from the document path, the chunk's
// position and the document revision.
func chunkID(path string, idx int, crc uint32) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s|%d|%d", path, idx, crc))).String()
}
