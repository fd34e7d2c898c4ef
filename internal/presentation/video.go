package presentation

import (
	"regexp"
	"strings"
)

var (
	youtubeWatchPattern = regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.)?youtube\.com/watch\?(?:[^#]*&)?v=([A-Za-z0-9_-]+)`)
	youtubeShortPattern = regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtu\.be/([A-Za-z0-9_-]+)`)
	vimeoPattern        = regexp.MustCompile(`^(?:https?://)?(?:www\.)?vimeo\.com/(\d+)`)
)

// EmbedVideoURL rewrites YouTube and Vimeo page links into their embeddable
// player URLs. Player URLs and anything unrecognized pass through unchanged,
// so EmbedVideoURL(EmbedVideoURL(x)) == EmbedVideoURL(x).
func EmbedVideoURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	if strings.Contains(trimmed, "embed") || strings.Contains(trimmed, "player") {
		return trimmed
	}

	if m := youtubeWatchPattern.FindStringSubmatch(trimmed); m != nil {
		return "https://www.youtube.com/embed/" + m[1]
	}
	if m := youtubeShortPattern.FindStringSubmatch(trimmed); m != nil {
		return "https://www.youtube.com/embed/" + m[1]
	}
	if m := vimeoPattern.FindStringSubmatch(trimmed); m != nil {
		return "https://player.vimeo.com/video/" + m[1]
	}

	return trimmed
}

// IsExternalVideo reports whether url points at a YouTube or Vimeo player
// rather than a file hosted by the platform.
func IsExternalVideo(url string) bool {
	embedded := EmbedVideoURL(url)
	return strings.HasPrefix(embedded, "https://www.youtube.com/embed/") ||
		strings.HasPrefix(embedded, "https://player.vimeo.com/video/")
}
