// Package chunker splits raw documents into overlapping text windows of
// bounded size. Input arrives in one of two shapes: table rows or
// pre-paginated document text.
package chunker

import (
	"strings"
)

// defaultSeparators is the recursive descent order: paragraph, line,
// sentence, word, then a hard character cut as the last resort.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 10000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

// SplitText splits text into chunks of at most chunkSize characters, with
// adjacent chunks sharing roughly overlap characters of trailing context.
// Concatenating each chunk's text past its overlap prefix reproduces the
// input exactly.
func (s *Splitter) SplitText(text string) []string {
	if text == "" {
		return nil
	}
	return s.merge(s.split(text, 0))
}

// SplitRows serializes table rows (one whitespace-joined string per row,
// rows newline-joined) and splits the result.
func (s *Splitter) SplitRows(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = strings.Join(row, " ")
	}
	return s.SplitText(strings.Join(lines, "\n"))
}

// SplitPages splits each page independently, preserving page boundaries.
func (s *Splitter) SplitPages(pages []string) []string {
	var chunks []string
	for _, page := range pages {
		chunks = append(chunks, s.SplitText(page)...)
	}
	return chunks
}

// split recursively breaks text into pieces no longer than chunkSize.
// Separators stay attached to the preceding piece, so concatenating the
// pieces reproduces the input.
func (s *Splitter) split(text string, sepIdx int) []string {
	if len(text) <= s.chunkSize {
		return []string{text}
	}

	sep := s.separators[sepIdx]
	if sep == "" {
		var pieces []string
		for len(text) > s.chunkSize {
			pieces = append(pieces, text[:s.chunkSize])
			text = text[s.chunkSize:]
		}
		if text != "" {
			pieces = append(pieces, text)
		}
		return pieces
	}

	parts := strings.SplitAfter(text, sep)
	if len(parts) == 1 {
		return s.split(text, sepIdx+1)
	}

	var pieces []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		if len(part) <= s.chunkSize {
			pieces = append(pieces, part)
		} else {
			pieces = append(pieces, s.split(part, sepIdx+1)...)
		}
	}
	return pieces
}

// merge greedily packs pieces into chunks, carrying the last overlap
// characters of each emitted chunk into the next one. A chunk is only
// emitted when it contains text beyond the carried prefix.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var cur strings.Builder
	carried := 0

	for _, piece := range pieces {
		if cur.Len()+len(piece) > s.chunkSize {
			if cur.Len() > carried {
				chunk := cur.String()
				chunks = append(chunks, chunk)
				cur.Reset()
				carried = 0
				if s.overlap > 0 && len(chunk) > s.overlap {
					cur.WriteString(chunk[len(chunk)-s.overlap:])
					carried = s.overlap
				}
			}
			// Shrink the carried context if it would push the next chunk
			// past the size bound.
			if cur.Len()+len(piece) > s.chunkSize {
				keep := s.chunkSize - len(piece)
				prefix := cur.String()
				cur.Reset()
				carried = 0
				if keep > 0 {
					cur.WriteString(prefix[len(prefix)-keep:])
					carried = keep
				}
			}
		}
		cur.WriteString(piece)
	}

	if cur.Len() > carried {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// Overlap reports the configured overlap in characters.
func (s *Splitter) Overlap() int {
	return s.overlap
}
