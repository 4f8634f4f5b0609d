package transcriptcache

import (
	"context"

	"github.com/ManuelReschke/ChapterFox/internal/pkg/youtube"
)

// TranscriptFetcher downloads a subtitle track.
type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, videoID string, track youtube.Subtitle) ([]byte, error)
}

// CachedFetcher serves tracks from the store and falls through to the next
// fetcher on a miss or a store error. Fetched tracks are written back.
type CachedFetcher struct {
	next  TranscriptFetcher
	store *Store
}

func NewCachedFetcher(next TranscriptFetcher, store *Store) *CachedFetcher {
	return &CachedFetcher{next: next, store: store}
}

func (f *CachedFetcher) FetchTranscript(ctx context.Context, videoID string, track youtube.Subtitle) ([]byte, error) {
	data, ok, err := f.store.Get(ctx, videoID, track.LanguageCode)
	if err != nil {
		f.store.logger.Warn().Err(err).Str("video_id", videoID).Msg("Transcript cache read failed")
	}
	if ok {
		f.store.logger.Debug().Str("video_id", videoID).Str("lang", track.LanguageCode).Msg("Transcript cache hit")
		return data, nil
	}

	data, err = f.next.FetchTranscript(ctx, videoID, track)
	if err != nil {
		return nil, err
	}
	if perr := f.store.Put(ctx, videoID, track.LanguageCode, data); perr != nil {
		f.store.logger.Warn().Err(perr).Str("video_id", videoID).Msg("Transcript cache write failed")
	}
	return data, nil
}
