// Package docstore stores document chunks and their citation metadata in a
// Chroma collection.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
)

// Metadata attribute keys attached to every stored chunk.
const (
	FilePath  = "file_path"
	FileCrc   = "file_crc"
	Category  = "category"
	Locations = "locations"
	ChunkID   = "chunk_id"
)

type ChromaStore struct {
	results     int
	requestSize int
	col         chroma.Collection
}

type ChromaStoreConfig struct {
	BaseURL       string
	Collection    string
	EmbeddingFunc embeddings.EmbeddingFunction
	Results       int
	RequestSize   int
	Reset         bool
}

func NewChromaStore(ctx context.Context, cfg ChromaStoreConfig) (*ChromaStore, error) {
	client, err := chroma.NewHTTPClient(chroma.WithBaseURL(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create Chroma client: %w", err)
	}

	if cfg.Reset {
		// The collection may not exist yet on a first run.
		_ = client.DeleteCollection(ctx, cfg.Collection)
	}

	col, err := client.GetOrCreateCollection(ctx, cfg.Collection,
		chroma.WithEmbeddingFunctionCreate(cfg.EmbeddingFunc))
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %w", cfg.Collection, err)
	}

	return &ChromaStore{
		results:     cfg.Results,
		requestSize: cfg.RequestSize,
		col:         col,
	}, nil
}

// Replace removes the chunks previously stored for doc.File and inserts the
// given set, so changed documents never accumulate stale duplicates.
func (ds *ChromaStore) Replace(ctx context.Context, doc Doc) error {
	if err := ds.Remove(ctx, doc.File); err != nil {
		return err
	}

	for _, bucket := range buckets(doc.Chunks, ds.requestSize) {
		texts := make([]string, 0, len(bucket))
		metas := make([]chroma.DocumentMetadata, 0, len(bucket))
		for _, c := range bucket {
			texts = append(texts, c.Text)
			metas = append(metas, chroma.NewDocumentMetadata(
				chroma.NewStringAttribute(FilePath, doc.File),
				chroma.NewIntAttribute(FileCrc, int64(doc.Crc)),
				chroma.NewStringAttribute(Category, doc.Category),
				chroma.NewStringAttribute(Locations, encodeLocations(c.Locations)),
				chroma.NewStringAttribute(ChunkID, c.ID),
			))
		}

		err := ds.col.Add(ctx,
			chroma.WithTexts(texts...),
			chroma.WithIDGenerator(chroma.NewULIDGenerator()),
			chroma.WithMetadatas(metas...),
		)
		if err != nil {
			return fmt.Errorf("failed to store chunks for %s: %w", doc.File, err)
		}
	}

	return nil
}

// Remove deletes every chunk stored for the given document path.
func (ds *ChromaStore) Remove(ctx context.Context, path string) error {
	err := ds.col.Delete(ctx, chroma.WithWhereDelete(chroma.EqString(FilePath, path)))
	if err != nil {
		return fmt.Errorf("failed to remove chunks for %s: %w", path, err)
	}

	return nil
}

// Search returns the top-k chunks for query in the ranking the store
// produced. No local re-ranking or filtering happens here.
func (ds *ChromaStore) Search(ctx context.Context, query string) ([]SearchResult, error) {
	r, err := ds.col.Query(ctx,
		chroma.WithQueryTexts(query),
		chroma.WithNResults(ds.results),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve chunks: %w", err)
	}

	res := make([]SearchResult, 0, ds.results)
	docs := r.GetDocumentsGroups()[0]
	metadatas := r.GetMetadatasGroups()[0]
	scores := r.GetDistancesGroups()[0]
	for i := range docs {
		file, _ := metadatas[i].GetString(FilePath)
		category, _ := metadatas[i].GetString(Category)
		locations, _ := metadatas[i].GetString(Locations)
		res = append(res, SearchResult{
			Text:      docs[i].ContentString(),
			File:      file,
			Category:  category,
			Locations: decodeLocations(locations),
			Score:     float32(scores[i]),
		})
	}

	return res, nil
}

// Locations are stored as a JSON array so names that themselves contain
// separators (e.g. "Sheet: Tarifs, 2024") survive the round trip.
func encodeLocations(locs []string) string {
	b, _ := json.Marshal(locs)
	return string(b)
}

func decodeLocations(raw string) []string {
	var locs []string
	if err := json.Unmarshal([]byte(raw), &locs); err != nil {
		return nil
	}

	return locs
}

// buckets splits chunks into groups whose combined text length stays within
// limit, one chunk minimum per group. A limit of zero means no splitting.
func buckets(chunks []Chunk, limit int) [][]Chunk {
	if limit <= 0 {
		if len(chunks) == 0 {
			return nil
		}
		return [][]Chunk{chunks}
	}

	var out [][]Chunk
	var cur []Chunk
	size := 0
	for _, c := range chunks {
		if len(cur) > 0 && size+len(c.Text) > limit {
			out = append(out, cur)
			cur = nil
			size = 0
		}

		cur = append(cur, c)
		size += len(c.Text)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}

	return out
}
