package activity

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseClock parses an "HH:MM" moving or elapsed time. A trailing ":SS" part is
// ignored. Malformed input yields zero and false.
func ParseClock(s string) (time.Duration, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 {
		return 0, false
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 {
		return 0, false
	}

	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute, true
}

// FormatClock renders a number of seconds as "HH:MM", dropping the seconds.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/3600, (seconds%3600)/60)
}

// Pace is a time per kilometer. An invalid pace stands for a paced activity
// without a usable speed; it is written as the number 0 in JSON, a valid pace
// as "M:SS".
type Pace struct {
	Minutes int
	Seconds int
	Valid   bool
}

// PaceFromSpeed converts a speed in km/h to a pace in minutes per kilometer.
// Seconds are truncated.
func PaceFromSpeed(speed float64) Pace {
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return Pace{}
	}

	pace := 60.0 / speed
	minutes := math.Floor(pace)
	return Pace{
		Minutes: int(minutes),
		Seconds: int((pace - minutes) * 60),
		Valid:   true,
	}
}

func (p Pace) String() string {
	if !p.Valid {
		return "0"
	}
	return fmt.Sprintf("%d:%02d", p.Minutes, p.Seconds)
}

// Duration returns the pace as a duration per kilometer.
func (p Pace) Duration() time.Duration {
	if !p.Valid {
		return 0
	}
	return time.Duration(p.Minutes)*time.Minute + time.Duration(p.Seconds)*time.Second
}

func (p Pace) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("0"), nil
	}
	return json.Marshal(p.String())
}

func (p *Pace) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Numeric sentinel.
		*p = Pace{}
		return nil
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return fmt.Errorf("invalid pace %q", s)
	}
	minutes, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("invalid pace %q: %w", s, err)
	}
	seconds, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("invalid pace %q: %w", s, err)
	}

	*p = Pace{Minutes: minutes, Seconds: seconds, Valid: true}
	return nil
}
