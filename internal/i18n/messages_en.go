package i18n

// englishMessages contains all English translations.
var englishMessages = map[string]string{
	// Queue messages
	"queue.added": "📥 Added to queue at #%d\n\n🎵 Title: %s\n⏱ Duration: %s\n🙍 Requested by: %s",

	// Now-playing announcements
	"stream.now_playing": "▶️ Started streaming\n\n🎵 Title: [%[2]s](%[1]s)\n⏱ Duration: %[3]s\n🙍 Requested by: %[4]s",
	"stream.index":       "▶️ Started streaming your live link.\n\n🙍 Requested by: %s",
	"stream.next":        "▶️ Now playing\n\n🎵 Title: %s\n⏱ Duration: %s\n🙍 Requested by: %s",

	// Index/raw link placeholder title
	"index.title": "Index / M3U8 link",

	// Skip handling
	"skip.empty": "⏹ Nothing left to play. Left the voice chat.",

	// Errors
	"error.not_found":            "❌ Couldn't find anything for that. Try a different search or link.",
	"error.playback_unavailable": "❌ Couldn't fetch a playable stream from any source. Please try again later.",
	"error.backend":              "❌ Something went wrong while starting playback. Please try again.",
	"play.usage":                 "Usage: /play song name or link, or reply to an audio/video with /play.",

	// Buttons
	"button.close": "🗑 Close",
	"button.skip":  "⏭ Skip",
}
