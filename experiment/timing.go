package experiment

import (
	"fmt"
	"time"

	"testbed/logging"
)

// Timed runs @fn and logs how long it took under @name, whether or not it failed.
func Timed(name string, fn func() error) (time.Duration, error) {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	logging.Infof("the function `%s` took: %s", name, FormatElapsed(elapsed))
	return elapsed, err
}

// FormatElapsed renders a duration as hours, minutes and seconds: 1h:2:3.
func FormatElapsed(d time.Duration) string {
	total := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%dh:%d:%d", total/3600, total%3600/60, total%60)
}
