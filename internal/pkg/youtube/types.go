package youtube

// VideoDetails is the subset of the video/info response the service reads.
type VideoDetails struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	LengthSeconds string      `json:"lengthSeconds"`
	ChannelTitle  string      `json:"channelTitle"`
	Description   string      `json:"description"`
	IsLiveContent bool        `json:"isLiveContent"`
	Thumbnail     []Thumbnail `json:"thumbnail"`
}

type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// SubtitlesResponse is the subtitles endpoint response.
type SubtitlesResponse struct {
	Subtitles []Subtitle `json:"subtitles"`
	Format    string     `json:"format"`
	Msg       string     `json:"msg"`
}

// Subtitle is one subtitle track. URL points at the track's XML.
type Subtitle struct {
	LanguageName   string `json:"languageName"`
	LanguageCode   string `json:"languageCode"`
	IsTranslatable bool   `json:"isTranslatable"`
	URL            string `json:"url"`
}

// FirstTrack returns the first subtitle track, the one chapters are built from.
func (s *SubtitlesResponse) FirstTrack() (Subtitle, error) {
	if s == nil || len(s.Subtitles) == 0 {
		return Subtitle{}, ErrNoSubtitles
	}
	return s.Subtitles[0], nil
}
