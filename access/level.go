package access

// Level is an electrical output level.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l {
		return "HIGH"
	}
	return "LOW"
}

// LogicalToElectrical maps a relay's logical state onto its active-low
// line: engaged drives the line LOW.
func LogicalToElectrical(engaged bool) Level {
	return Level(!engaged)
}
