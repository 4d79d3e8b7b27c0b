package usecase

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"solar-pipeline/domain/repository"
	"solar-pipeline/infrastructure/logger"
	"solar-pipeline/infrastructure/retry"
)

// IChannelResolver turns a channel URL into a channel id.
type IChannelResolver interface {
	// Resolve returns ok=false when the channel cannot be found; callers skip it.
	Resolve(ctx context.Context, channelURL string) (string, bool)
}

type ChannelResolver struct {
	youtubeRepo repository.IYouTube
	retrier     *retry.Retrier
}

func NewChannelResolver(youtubeRepo repository.IYouTube, retrier *retry.Retrier) IChannelResolver {
	return &ChannelResolver{youtubeRepo: youtubeRepo, retrier: retrier}
}

// ExtractHandle pulls the channel handle out of a channel URL:
// /@handle, /c/<alias>, /user/<alias> or /<name>.
func ExtractHandle(channelURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(channelURL))
	if err != nil {
		return "", false
	}
	path := strings.Trim(u.Path, "/")
	parts := strings.Split(path, "/")

	if strings.HasPrefix(parts[0], "@") {
		handle := strings.TrimPrefix(parts[0], "@")
		return handle, handle != ""
	}
	if (parts[0] == "c" || parts[0] == "user") && len(parts) > 1 && parts[1] != "" {
		return parts[1], true
	}
	return parts[0], parts[0] != ""
}

const (
	wordChar    = `[\p{L}\p{N}_]`
	nonWordChar = `[^\p{L}\p{N}_]`
)

// TitlePattern matches keyword as a whole word, ignoring case. Word
// characters are Unicode letters, digits and underscore, so Urdu keywords
// and titles mixing scripts get proper boundaries.
func TitlePattern(keyword string) *regexp.Regexp {
	first, _ := utf8.DecodeRuneInString(keyword)
	last, _ := utf8.DecodeLastRuneInString(keyword)
	return regexp.MustCompile(`(?i)` + boundary(first, true) + regexp.QuoteMeta(keyword) + boundary(last, false))
}

// boundary reproduces \b next to r: a word rune needs a non-word neighbour
// (or the edge of the title), a non-word rune needs a word neighbour.
func boundary(r rune, before bool) string {
	if !isWordRune(r) {
		return wordChar
	}
	if before {
		return `(?:^|` + nonWordChar + `)`
	}
	return `(?:$|` + nonWordChar + `)`
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func (r *ChannelResolver) Resolve(ctx context.Context, channelURL string) (string, bool) {
	log := logger.GetLogger().WithField("channel", channelURL)

	handle, ok := ExtractHandle(channelURL)
	if !ok {
		log.Warn("Could not extract handle from URL")
		return "", false
	}

	id, err := retry.Do(ctx, r.retrier, "channels.list", func() (string, error) {
		return r.youtubeRepo.ChannelIDByHandle(ctx, handle)
	})
	if err == nil && id != "" {
		return id, true
	}

	// Fallback: search by handle name
	id, err = retry.Do(ctx, r.retrier, "search.list", func() (string, error) {
		return r.youtubeRepo.SearchChannelID(ctx, handle)
	})
	if err == nil && id != "" {
		log.WithField("channelId", id).Debug("Channel resolved through search")
		return id, true
	}

	log.WithField("handle", handle).Warn("Could not resolve channel ID")
	return "", false
}
