package domain

// Well-known scope store keys. Flow code and the error translator agree on
// these names; values are untyped and owned by whoever set them.
const (
	// ScopeKeyAudio holds the audio collaborator handle for the session,
	// when one is configured.
	ScopeKeyAudio = "audio.player"

	// ScopeKeyLocale holds the session's active locale tag (e.g. "en-US").
	ScopeKeyLocale = "session.locale"

	// ScopeKeyErrorSounds holds the device's own error sound ids ([]string),
	// seeded from inventory parameters. Takes precedence over the
	// server-wide list.
	ScopeKeyErrorSounds = "audio.error_sounds"
)
