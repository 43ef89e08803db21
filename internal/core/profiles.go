package core

// sourceProfile isolates everything that varies between source kinds, so the
// dispatch skeleton stays identical for all of them: how the queue entry's
// media reference is built, which poster the announcement carries, and which
// caption template it uses.
type sourceProfile struct {
	captionKey string
	// trackPoster uses the resolved track's thumbnail; otherwise the static
	// poster for this kind is taken from PostersConfig.
	trackPoster  bool
	staticPoster func(p *PostersConfig, video bool) string
	// mediaRef builds the queue entry's media reference. Local files keep
	// their path; remote payloads get a tagged reference so skip/finish
	// handlers can tell them apart.
	mediaRef func(payload PlaybackPayload, track *ResolvedTrack) string
}

func localOrTagged(tag string) func(PlaybackPayload, *ResolvedTrack) string {
	return func(payload PlaybackPayload, track *ResolvedTrack) string {
		if payload.Kind == PayloadLocalFile {
			return payload.Path
		}
		return tag + track.SourceID
	}
}

var sourceProfiles = map[SourceKind]sourceProfile{
	KindYouTube: {
		captionKey:  "stream.now_playing",
		trackPoster: true,
		mediaRef:    localOrTagged("vid_"),
	},
	KindSpotify: {
		captionKey:  "stream.now_playing",
		trackPoster: true,
		mediaRef:    localOrTagged("vid_"),
	},
	KindYTMusic: {
		captionKey: "stream.now_playing",
		staticPoster: func(p *PostersConfig, _ bool) string {
			return p.YTMusic
		},
		mediaRef: localOrTagged("vid_"),
	},
	KindTelegram: {
		captionKey: "stream.now_playing",
		staticPoster: func(p *PostersConfig, video bool) string {
			if video {
				return p.TelegramVideo
			}
			return p.TelegramAudio
		},
		mediaRef: func(payload PlaybackPayload, _ *ResolvedTrack) string {
			return payload.Ref()
		},
	},
	KindLive: {
		captionKey:  "stream.now_playing",
		trackPoster: true,
		mediaRef: func(_ PlaybackPayload, track *ResolvedTrack) string {
			return "live_" + track.SourceID
		},
	},
	KindIndex: {
		captionKey: "stream.index",
		staticPoster: func(p *PostersConfig, _ bool) string {
			return p.Stream
		},
		mediaRef: func(PlaybackPayload, *ResolvedTrack) string {
			return "index_url"
		},
	},
}

func profileFor(kind SourceKind) sourceProfile {
	if p, ok := sourceProfiles[kind]; ok {
		return p
	}
	return sourceProfiles[KindYouTube]
}
