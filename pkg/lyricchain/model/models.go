package model

// LyricLine is one positional line of a parsed lyric. Index is the line's
// position in the song's original ordering, not a timestamp.
type LyricLine struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// SongLyrics holds the parsed lyric lines of a single song together with
// its metadata. Once inserted into the cache store the store owns it.
type SongLyrics struct {
	SongID   string      `json:"song_id"`
	SongName string      `json:"song_name"`
	Artist   string      `json:"artist"`
	Lines    []LyricLine `json:"lines"`
}

// MatchResult is produced fresh for every resolved query. It is never
// persisted; only the underlying SongLyrics is.
type MatchResult struct {
	SongID      string `json:"song_id,omitempty"`
	SongName    string `json:"song_name"`
	Artist      string `json:"artist"`
	MatchedLine string `json:"matched_line"`
	NextLine    string `json:"next_line"`
	FromCache   bool   `json:"from_cache"`
}

// NewSongLyrics builds a SongLyrics from plain line texts, assigning
// positional indexes.
func NewSongLyrics(songID, songName, artist string, lines []string) *SongLyrics {
	sl := &SongLyrics{
		SongID:   songID,
		SongName: songName,
		Artist:   artist,
		Lines:    make([]LyricLine, 0, len(lines)),
	}
	for i, text := range lines {
		sl.Lines = append(sl.Lines, LyricLine{Index: i, Text: text})
	}
	return sl
}

// LineTexts returns just the line texts in order.
func (sl *SongLyrics) LineTexts() []string {
	out := make([]string, 0, len(sl.Lines))
	for _, l := range sl.Lines {
		out = append(out, l.Text)
	}
	return out
}
