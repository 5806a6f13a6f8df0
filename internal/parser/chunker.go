package parser

import (
	"strings"

	"github.com/timmy/docmill/internal/domain"
)

// Fixed token policy applied uniformly by both ingestion flows.
const (
	MinTokens = 150
	MaxTokens = 1250
)

// ChunkConfig configures a Chunker.
type ChunkConfig struct {
	Strategy  string // only "classic" is implemented
	MinTokens int
	MaxTokens int

	// DuplicateHeaders controls header deduplication at chunk boundaries.
	// Disabled by both ingestion flows; carried as a pass-through contract.
	DuplicateHeaders bool

	// Counter overrides the token counter; nil uses CountTokens.
	Counter TokenCounter
}

// DefaultChunkConfig returns the fixed policy used by the ingestion flows.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Strategy:         "classic",
		MinTokens:        MinTokens,
		MaxTokens:        MaxTokens,
		DuplicateHeaders: false,
	}
}

// Chunker splits raw documents into token-bounded chunks. A document below
// the minimum yields exactly one chunk; otherwise no emitted chunk is below
// the minimum or above the maximum token bound.
type Chunker struct {
	cfg     ChunkConfig
	counter TokenCounter
}

// NewChunker creates a Chunker with the given configuration.
func NewChunker(cfg ChunkConfig) *Chunker {
	if cfg.MinTokens <= 0 {
		cfg.MinTokens = MinTokens
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = MaxTokens
	}
	counter := cfg.Counter
	if counter == nil {
		counter = CountTokens
	}
	return &Chunker{cfg: cfg, counter: counter}
}

// Chunk splits every document into chunks carrying the document's metadata.
func (c *Chunker) Chunk(docs []domain.Document) []domain.Chunk {
	var chunks []domain.Chunk
	for _, doc := range docs {
		chunks = append(chunks, c.chunkDocument(doc)...)
	}
	return chunks
}

func (c *Chunker) chunkDocument(doc domain.Document) []domain.Chunk {
	total := c.counter(doc.Text)

	// A short document yields exactly one chunk, never zero. This is the one
	// case where a chunk may be below the minimum bound.
	if total <= c.cfg.MaxTokens {
		return []domain.Chunk{{Text: doc.Text, Tokens: total, Metadata: doc.Metadata.Clone()}}
	}

	units := c.splitUnits(doc.Text)

	var pieces []piece
	var current []string
	currentTokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		text := strings.Join(current, "\n\n")
		pieces = append(pieces, piece{text: text, tokens: c.counter(text)})
		current = nil
		currentTokens = 0
	}

	for _, unit := range units {
		unitTokens := c.counter(unit)
		if currentTokens+unitTokens > c.cfg.MaxTokens {
			flush()
		}
		current = append(current, unit)
		currentTokens += unitTokens
	}
	flush()

	pieces = c.rebalance(pieces)

	out := make([]domain.Chunk, 0, len(pieces))
	for _, p := range pieces {
		out = append(out, domain.Chunk{Text: p.text, Tokens: p.tokens, Metadata: doc.Metadata.Clone()})
	}
	return out
}

type piece struct {
	text   string
	tokens int
}

// rebalance fixes up pieces that fell below the minimum bound by merging each
// into a neighbor, or re-splitting the pair evenly at a unit boundary when the
// merge would exceed the maximum.
func (c *Chunker) rebalance(pieces []piece) []piece {
	for i := 0; i < len(pieces); i++ {
		if pieces[i].tokens >= c.cfg.MinTokens || len(pieces) < 2 {
			continue
		}

		j := i - 1
		if j < 0 || (i+1 < len(pieces) && pieces[i+1].tokens < pieces[j].tokens) {
			j = i + 1
		}
		lo, hi := i, j
		if lo > hi {
			lo, hi = hi, lo
		}

		merged := pieces[lo].text + "\n\n" + pieces[hi].text
		mergedTokens := c.counter(merged)

		if mergedTokens <= c.cfg.MaxTokens {
			pieces[lo] = piece{text: merged, tokens: mergedTokens}
			pieces = append(pieces[:hi], pieces[hi+1:]...)
			i = lo - 1
			continue
		}

		// Split the pair at the unit boundary closest to the midpoint.
		units := c.splitUnits(merged)
		var head []string
		headTokens := 0
		k := 0
		for ; k < len(units); k++ {
			unitTokens := c.counter(units[k])
			if headTokens+unitTokens > mergedTokens/2 && headTokens > 0 {
				break
			}
			head = append(head, units[k])
			headTokens += unitTokens
		}
		headText := strings.Join(head, "\n\n")
		tailText := strings.Join(units[k:], "\n\n")

		// A single dominant unit can leave the other side of the boundary
		// split undersized. Fall back to a word-boundary split at the
		// midpoint: the pair is above the maximum, so both halves land
		// safely inside the bounds.
		if c.counter(headText) < c.cfg.MinTokens || c.counter(tailText) < c.cfg.MinTokens {
			headText, tailText = c.splitWords(merged, mergedTokens/2)
		}
		pieces[lo] = piece{text: headText, tokens: c.counter(headText)}
		pieces[hi] = piece{text: tailText, tokens: c.counter(tailText)}
		i = hi // both halves meet the bounds; no need to revisit the pair
	}
	return pieces
}

// splitWords cuts text in two at the word boundary closest to target tokens.
func (c *Chunker) splitWords(text string, target int) (string, string) {
	words := strings.Fields(text)
	cut := 0
	tokens := 0
	for cut < len(words)-1 {
		wordTokens := c.counter(words[cut])
		if tokens+wordTokens > target && tokens > 0 {
			break
		}
		tokens += wordTokens
		cut++
	}
	return strings.Join(words[:cut], " "), strings.Join(words[cut:], " ")
}

// splitUnits breaks text into paragraph units, further splitting any
// paragraph that alone exceeds the maximum bound.
func (c *Chunker) splitUnits(text string) []string {
	var units []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if c.counter(para) <= c.cfg.MaxTokens {
			units = append(units, para)
			continue
		}
		units = append(units, c.hardSplit(para)...)
	}
	return units
}

// hardSplit cuts an oversized paragraph at word boundaries so every resulting
// unit fits within the maximum bound. Per-word token sums slightly overcount
// joined text, which keeps the bound safe.
func (c *Chunker) hardSplit(para string) []string {
	words := strings.Fields(para)
	var units []string
	var current []string
	tokens := 0

	for _, word := range words {
		wordTokens := c.counter(word)
		if tokens+wordTokens > c.cfg.MaxTokens && len(current) > 0 {
			units = append(units, strings.Join(current, " "))
			current = current[:0]
			tokens = 0
		}
		current = append(current, word)
		tokens += wordTokens
	}
	if len(current) > 0 {
		units = append(units, strings.Join(current, " "))
	}
	return units
}
