package env

import (
	"os"
	"strconv"
)

func Test() bool {
	return os.Getenv("TEST_MODE") != ""
}

func Dev() bool {
	return os.Getenv("DEV_MODE") != ""
}

func Debug() bool {
	return os.Getenv("DEBUG") != ""
}

// Timeout is the render timeout override in seconds from $GANTT_TIMEOUT.
func Timeout() (int, bool) {
	if s := os.Getenv("GANTT_TIMEOUT"); s != "" {
		i, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return int(i), true
		}
	}
	return -1, false
}
