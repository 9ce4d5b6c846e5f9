package docstore

// Chunk is one stored text window. ID is deterministic for a given document
// revision so repeated indexing of identical content is traceable.
type Chunk struct {
	ID        string
	Text      string
	Locations []string
}

type Doc struct {
	File     string
	Crc      uint32
	Category string
	Chunks   []Chunk
}

// SearchResult is one retrieved chunk with its store-assigned score and the
// citation metadata recorded at index time.
type SearchResult struct {
	Text      string
	File      string
	Category  string
	Locations []string
	Score     float32
}
