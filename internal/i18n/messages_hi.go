package i18n

// hindiMessages contains all Hindi translations.
var hindiMessages = map[string]string{
	// Queue messages
	"queue.added": "📥 कतार में जोड़ा गया #%d\n\n🎵 शीर्षक: %s\n⏱ अवधि: %s\n🙍 अनुरोधकर्ता: %s",

	// Now-playing announcements
	"stream.now_playing": "▶️ स्ट्रीमिंग शुरू\n\n🎵 शीर्षक: [%[2]s](%[1]s)\n⏱ अवधि: %[3]s\n🙍 अनुरोधकर्ता: %[4]s",
	"stream.index":       "▶️ आपका लाइव लिंक स्ट्रीम हो रहा है.\n\n🙍 अनुरोधकर्ता: %s",
	"stream.next":        "▶️ अब चल रहा है\n\n🎵 शीर्षक: %s\n⏱ अवधि: %s\n🙍 अनुरोधकर्ता: %s",

	// Index/raw link placeholder title
	"index.title": "Index / M3U8 लिंक",

	// Skip handling
	"skip.empty": "⏹ चलाने के लिए कुछ नहीं बचा. वॉइस चैट छोड़ दी.",

	// Errors
	"error.not_found":            "❌ इसके लिए कुछ नहीं मिला. कोई और खोज या लिंक आज़माएँ.",
	"error.playback_unavailable": "❌ किसी भी स्रोत से स्ट्रीम नहीं मिली. बाद में फिर कोशिश करें.",
	"error.backend":              "❌ प्लेबैक शुरू करते समय कुछ गड़बड़ हुई. फिर कोशिश करें.",
	"play.usage":                 "उपयोग: /play गाने का नाम या लिंक, या किसी ऑडियो/वीडियो का reply करें.",

	// Buttons
	"button.close": "🗑 बंद करें",
	"button.skip":  "⏭ स्किप",
}
