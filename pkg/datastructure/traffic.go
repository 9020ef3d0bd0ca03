package datastructure

// SpeedGroup is the congestion class of one path edge, from free flow (G5)
// down to standstill (G0). TempBlock marks a temporarily closed edge.
type SpeedGroup uint8

const (
	SpeedGroupG0 SpeedGroup = iota
	SpeedGroupG1
	SpeedGroupG2
	SpeedGroupG3
	SpeedGroupG4
	SpeedGroupG5
	SpeedGroupTempBlock
	SpeedGroupUnknown
)

func (s SpeedGroup) String() string {
	switch s {
	case SpeedGroupG0:
		return "G0"
	case SpeedGroupG1:
		return "G1"
	case SpeedGroupG2:
		return "G2"
	case SpeedGroupG3:
		return "G3"
	case SpeedGroupG4:
		return "G4"
	case SpeedGroupG5:
		return "G5"
	case SpeedGroupTempBlock:
		return "TempBlock"
	default:
		return "Unknown"
	}
}
