package analyses

import "errors"

var (
	// ErrNotFound is returned when the audio does not exist or belongs to
	// another owner. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("audio not found")
	// ErrTranscriptMissing is returned when analysis is requested before
	// the audio has a transcript.
	ErrTranscriptMissing = errors.New("transcript not available for this audio")
)
