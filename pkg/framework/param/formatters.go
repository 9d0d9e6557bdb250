package param

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeFormatter formats milliseconds with a ms or s unit.
func TimeFormatter(ms float64) string {
	if ms < 1000 {
		return fmt.Sprintf("%.0f ms", ms)
	}
	return fmt.Sprintf("%.2f s", ms/1000)
}

// TimeParser parses "150", "150 ms" or "1.5 s" into milliseconds.
func TimeParser(str string) (float64, error) {
	str = strings.TrimSpace(str)

	if strings.HasSuffix(str, "ms") {
		return strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(str, "ms")), 64)
	}
	if strings.HasSuffix(str, "s") {
		val, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(str, "s")), 64)
		if err != nil {
			return 0, err
		}
		return val * 1000, nil
	}
	return strconv.ParseFloat(str, 64)
}

// LoudnessFormatter formats a level in LUFS.
func LoudnessFormatter(lufs float64) string {
	return fmt.Sprintf("%.1f LUFS", lufs)
}

// LoudnessParser parses "-14", "-14 LUFS" or "-14 LU".
func LoudnessParser(str string) (float64, error) {
	str = strings.TrimSpace(str)
	upper := strings.ToUpper(str)
	switch {
	case strings.HasSuffix(upper, "LUFS"):
		str = str[:len(str)-4]
	case strings.HasSuffix(upper, "LU"):
		str = str[:len(str)-2]
	}
	return strconv.ParseFloat(strings.TrimSpace(str), 64)
}
