package restaurant

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// TimeOfDay is a wall time within a single day, stored as seconds
// since midnight. Opening hours never cross midnight.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m, sec int

	switch n, _ := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); n {
	case 2, 3:
	default:
		return 0, fmt.Errorf("malformed time of day: %q", s)
	}

	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("time of day out of range: %q", s)
	}

	return TimeOfDay(h*3600 + m*60 + sec), nil
}

// TimeOfDayFrom truncates t to its wall time of day.
func TimeOfDayFrom(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(t)/3600, int(t)/60%60, int(t)%60)
}

// Scan implements sql.Scanner. Postgres returns TIME columns
// as text; time.Time is accepted for drivers that parse them.
func (t *TimeOfDay) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
	case []byte:
		parsed, err := ParseTimeOfDay(string(v))
		if err != nil {
			return err
		}
		*t = parsed
	case time.Time:
		*t = TimeOfDayFrom(v)
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}
