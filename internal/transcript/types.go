package transcript

// Segment is a single speech-recognised utterance with its start time in
// seconds from the beginning of the audio. End is zero when the engine
// does not report it.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end,omitempty"`
}

// FormattedSegment is a Segment as rendered in the response payload.
type FormattedSegment struct {
	Text               string  `json:"text"`
	Start              float64 `json:"start"`
	FormattedTimestamp string  `json:"formatted_timestamp"`
}

// Chunk is a batch of consecutive segments merged for summarisation.
// Timestamp is the start of the chunk's first segment.
type Chunk struct {
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"`
}

// Section is one generated documentation unit.
type Section struct {
	Title     string  `json:"title"`
	Summary   string  `json:"summary"`
	Timestamp float64 `json:"timestamp"`
}

// FAQ is one generated question/answer pair.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Document is the assembled response for one processed video.
type Document struct {
	Segments    []FormattedSegment `json:"full_transcript_segments"`
	Sections    []Section          `json:"documentation"`
	FAQs        []FAQ              `json:"faqs"`
	VideoID     string             `json:"video_id,omitempty"`
	PlaybackURL string             `json:"video_playback_url,omitempty"`
}
