package domain

// Metadata carries per-document descriptive fields. At minimum a title derived
// from the originating filename or remote resource.
type Metadata map[string]string

// Title returns the document title, or an empty string when unset.
func (m Metadata) Title() string {
	if m == nil {
		return ""
	}
	return m["title"]
}

// Clone returns a shallow copy of the metadata map.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return Metadata{}
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Document is a raw loaded document: text plus metadata.
type Document struct {
	Text     string
	Metadata Metadata
}

// Chunk is a token-bounded slice of a document's text carrying the same
// metadata as the document it was cut from.
type Chunk struct {
	Text     string
	Tokens   int
	Metadata Metadata
}

// ChunksToDocuments converts a chunk set back into documents for embedding.
func ChunksToDocuments(chunks []Chunk) []Document {
	docs := make([]Document, 0, len(chunks))
	for _, c := range chunks {
		docs = append(docs, Document{Text: c.Text, Metadata: c.Metadata})
	}
	return docs
}
