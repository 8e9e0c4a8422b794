package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var isoDurationRegex = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// Duration renders an ISO-8601 duration such as "PT1H30M" as
// "1 hr 30 mins". Seconds are shown only when no larger unit is present.
// Input that is not an ISO-8601 duration is returned unchanged, which
// covers free-text times scraped from page copy.
func Duration(iso string) string {
	s := strings.TrimSpace(iso)
	m := isoDurationRegex.FindStringSubmatch(strings.ToUpper(s))
	if m == nil || s == "P" {
		return iso
	}

	units := []struct {
		value string
		name  string
	}{
		{m[1], "day"},
		{m[2], "hr"},
		{m[3], "min"},
	}

	var parts []string
	for _, u := range units {
		if p := plural(u.value, u.name); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		if p := plural(m[4], "sec"); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func plural(value, unit string) string {
	n, err := strconv.Atoi(value)
	if err != nil || n == 0 {
		return ""
	}
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
