package session

// Stage is the current phase of the conversion workflow. Exactly one value
// holds at any instant; the in-flight stages double as mutual-exclusion
// markers so overlapping operations are rejected instead of racing.
type Stage string

const (
	StageIdle       Stage = "idle"
	StageScanning   Stage = "scanning"
	StageScanned    Stage = "scanned"
	StageConverting Stage = "converting"
	StageConverted  Stage = "converted"
	StageCleaning   Stage = "cleaning"
)

// InFlight reports whether the stage marks an operation currently running.
func (s Stage) InFlight() bool {
	switch s {
	case StageScanning, StageConverting, StageCleaning:
		return true
	default:
		return false
	}
}

// Valid reports whether s is a known stage value.
func (s Stage) Valid() bool {
	switch s {
	case StageIdle, StageScanning, StageScanned, StageConverting, StageConverted, StageCleaning:
		return true
	default:
		return false
	}
}
