package model

import (
	"fmt"
	"time"
)

// ActiveWindow is a daily [StartHour, EndHour) interval in local time.
type ActiveWindow struct {
	StartHour int
	EndHour   int
}

func DefaultActiveWindow() ActiveWindow {
	return ActiveWindow{StartHour: 7, EndHour: 22} //nolint: mnd
}

func (w ActiveWindow) Validate() error {
	if w.StartHour < 0 || w.StartHour > 23 {
		return fmt.Errorf("start hour must be in [0, 23], got: %d", w.StartHour)
	}
	if w.EndHour < 1 || w.EndHour > 24 {
		return fmt.Errorf("end hour must be in [1, 24], got: %d", w.EndHour)
	}
	if w.StartHour >= w.EndHour {
		return fmt.Errorf("start hour (%d) must be less than end hour (%d)", w.StartHour, w.EndHour)
	}
	return nil
}

func (w ActiveWindow) Contains(t time.Time) bool {
	h := t.Hour()
	return h >= w.StartHour && h < w.EndHour
}
