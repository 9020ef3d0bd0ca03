package datastructure

import (
	"fmt"
	"strings"
)

const (
	UNKNOWN            = -9999
	U_TURN_LEFT        = -8
	KEEP_LEFT          = -7
	TURN_SHARP_LEFT    = -3
	TURN_LEFT          = -2
	TURN_SLIGHT_LEFT   = -1
	CONTINUE_ON_STREET = 0
	TURN_SLIGHT_RIGHT  = 1
	TURN_RIGHT         = 2
	TURN_SHARP_RIGHT   = 3
	FINISH             = 4
	KEEP_RIGHT         = 7
	U_TURN_RIGHT       = 8
	START              = 101
)

// TurnItem is one entry of the route turn table: the turn to perform when
// reaching the path vertex at Index. The last entry of a populated table is
// always the FINISH marker on the final vertex.
type TurnItem struct {
	Index int    `json:"index"`
	Sign  int    `json:"sign"`
	Name  string `json:"street_name,omitempty"`
}

func NewTurnItem(index, sign int, name string) TurnItem {
	return TurnItem{
		Index: index,
		Sign:  sign,
		Name:  name,
	}
}

func (t TurnItem) IsDestination() bool {
	return t.Sign == FINISH
}

// TurnItemDist pairs a turn with the arc length from the current cursor
// position to the turn vertex.
type TurnItemDist struct {
	Turn       TurnItem `json:"turn"`
	DistMeters float64  `json:"distance_meters"`
}

func (t TurnItem) Description() string {
	streetName := t.Name
	var description string

	switch t.Sign {
	case CONTINUE_ON_STREET:
		if isEmpty(streetName) {
			description = "Continue"
		} else {
			description = fmt.Sprintf("Continue onto %s", streetName)
		}
	case START:
		if isEmpty(streetName) {
			description = "Head out"
		} else {
			description = fmt.Sprintf("Head toward %s", streetName)
		}
	case FINISH:
		description = "you have arrived at your destination"
	default:
		dir := signDescription(t.Sign)
		if dir == "" {
			description = fmt.Sprintf("unknown  %d", t.Sign)
		} else if isEmpty(streetName) {
			description = dir
		} else {
			switch dir {
			case "Keep left":
				description = fmt.Sprintf("%s to continue on %s", dir, streetName)
			case "Keep right":
				description = fmt.Sprintf("%s continue on %s", dir, streetName)
			default:
				description = fmt.Sprintf("%s onto %s", dir, streetName)
			}
		}
	}
	return description
}

func signDescription(sign int) string {
	switch sign {
	case U_TURN_RIGHT:
		return "Make U-turn right"
	case U_TURN_LEFT:
		return "Make U-turn left"
	case KEEP_LEFT:
		return "Keep left"
	case TURN_SHARP_LEFT:
		return "Turn sharp left"
	case TURN_LEFT:
		return "Turn left"
	case TURN_SLIGHT_LEFT:
		return "Turn slight left"
	case TURN_SLIGHT_RIGHT:
		return "Turn slight right"
	case TURN_RIGHT:
		return "Turn right"
	case TURN_SHARP_RIGHT:
		return "Turn sharp right"
	case KEEP_RIGHT:
		return "Keep right"
	default:
		return ""
	}
}

func isEmpty(str string) bool {
	return strings.TrimSpace(str) == ""
}
