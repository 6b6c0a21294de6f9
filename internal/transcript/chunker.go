package transcript

import "strings"

// DefaultMaxWords is the soft word-count limit per chunk. LLM token
// limits are the hard ceiling; this keeps prompts comfortably under them.
const DefaultMaxWords = 150

// ChunkOptions controls where the chunker breaks. MaxWords is a soft
// limit: a single segment longer than MaxWords is never split, it just
// becomes its own chunk. PauseBreak forces a break when the gap between
// one segment's end and the next segment's start exceeds the given
// seconds (0 disables). BreakOnBlankLine forces a break when a segment's
// text contains an explicit paragraph break.
type ChunkOptions struct {
	MaxWords         int
	PauseBreak       float64
	BreakOnBlankLine bool
}

// ChunkSegments groups ordered segments into chunks suitable for
// prompting. Segments with empty or whitespace-only text are dropped.
// Chunk order preserves segment order, no chunk is empty, and each
// chunk's Timestamp is the start of its first segment.
func ChunkSegments(segs []Segment, opts ChunkOptions) []Chunk {
	maxWords := opts.MaxWords
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}

	var chunks []Chunk
	var current []string
	var currentStart float64
	var prevEnd float64
	wordCount := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			Text:      strings.Join(current, " "),
			Timestamp: currentStart,
		})
		current = nil
		wordCount = 0
	}

	for _, seg := range segs {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		words := len(strings.Fields(text))

		if len(current) > 0 {
			switch {
			case wordCount+words > maxWords:
				flush()
			case opts.BreakOnBlankLine && strings.Contains(seg.Text, "\n\n"):
				flush()
			case opts.PauseBreak > 0 && prevEnd > 0 && seg.Start-prevEnd > opts.PauseBreak:
				flush()
			}
		}

		if len(current) == 0 {
			currentStart = seg.Start
		}
		current = append(current, text)
		wordCount += words
		prevEnd = seg.End
	}

	flush()
	return chunks
}
