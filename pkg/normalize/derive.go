package normalize

import (
	"strings"
	"time"
)

// Lane labels.
const (
	LaneSupport = "SUPPORT"
	LaneMiddle  = "MIDDLE"

	roleDuoSupport = "DUO_SUPPORT"
	roleDuo        = "DUO"
)

// Team sides.
const (
	TeamBlue = 100
	TeamRed  = 200
)

// CorrectLane resolves the overloaded bottom-lane role labels to a
// canonical lane. Any other combination is returned unchanged.
func CorrectLane(lane, role string) string {
	switch role {
	case roleDuoSupport:
		return LaneSupport
	case roleDuo:
		return LaneMiddle
	default:
		return lane
	}
}

// Patch truncates a game version to major.minor: "10.14.123.4567" -> "10.14".
func Patch(version string) string {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) < 2 {
		return version
	}
	return parts[0] + "." + parts[1]
}

// Winner maps a team id to its side label.
func Winner(teamID int64) (string, bool) {
	switch teamID {
	case TeamBlue:
		return "Blue", true
	case TeamRed:
		return "Red", true
	default:
		return "", false
	}
}

// Day truncates an epoch millisecond timestamp to its UTC calendar day.
func Day(epochMillis int64) time.Time {
	t := time.UnixMilli(epochMillis).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Binary converts a boolean to 0/1.
func Binary(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
