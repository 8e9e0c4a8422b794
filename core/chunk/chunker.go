// Package chunk splits recipe text into word-bounded chunks for embedding.
// Words stand in for tokens. Chunks follow line boundaries so an
// ingredient or a step is never cut in half unless it alone is too long.
package chunk

import "strings"

const defaultChunkSize = 512

// Chunker packs lines into chunks of at most ChunkSize words.
type Chunker struct {
	ChunkSize int
}

// New creates a Chunker. Sizes <= 0 default to 512 words.
func New(chunkSize int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Chunker{ChunkSize: chunkSize}
}

// Chunk splits text on newlines and packs whole lines into chunks. A line
// longer than ChunkSize words is split into word runs of its own.
// Blank lines are dropped; whitespace inside a line is collapsed.
func (c *Chunker) Chunk(text string) []string {
	var (
		chunks []string
		cur    []string
		count  int
	)
	flush := func() {
		if len(cur) > 0 {
			chunks = append(chunks, strings.Join(cur, "\n"))
			cur, count = nil, 0
		}
	}

	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		if len(words) > c.ChunkSize {
			flush()
			for i := 0; i < len(words); i += c.ChunkSize {
				end := min(i+c.ChunkSize, len(words))
				chunks = append(chunks, strings.Join(words[i:end], " "))
			}
			continue
		}

		if count+len(words) > c.ChunkSize {
			flush()
		}
		cur = append(cur, strings.Join(words, " "))
		count += len(words)
	}
	flush()
	return chunks
}
