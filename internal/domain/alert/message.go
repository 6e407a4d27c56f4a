package alert

import (
	"fmt"
	"time"
)

func LateMessage(name, date string, clockIn time.Time) string {
	return fmt.Sprintf("%s clocked in late on %s at %s", name, date, clockIn.Format("15:04"))
}

func MissingClockOutMessage(name, date string) string {
	return fmt.Sprintf("%s did not clock out on %s", name, date)
}

func AbsentMessage(name, date string) string {
	return fmt.Sprintf("%s was absent on %s", name, date)
}
