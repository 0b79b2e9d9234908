package access

// Cue is a feedback sound request. Its value is the track index on the
// MP3 module.
type Cue uint8

const (
	CueNone     Cue = 0
	CueStartup  Cue = 1
	CueWaiting  Cue = 2
	CueAccepted Cue = 3
	CueDenied1  Cue = 4
	CueDenied2  Cue = 5
	CueDenied3  Cue = 6
)

// Track returns the audio track index for c.
func (c Cue) Track() uint8 { return uint8(c) }

func (c Cue) String() string {
	switch c {
	case CueStartup:
		return "startup"
	case CueWaiting:
		return "waiting"
	case CueAccepted:
		return "accepted"
	case CueDenied1:
		return "denied-1"
	case CueDenied2:
		return "denied-2"
	case CueDenied3:
		return "denied-3"
	default:
		return "none"
	}
}
