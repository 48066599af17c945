package fields

import (
	"strconv"
	"strings"

	"github.com/oakmail/mailcore/message"
)

var monthNames = map[string]int32{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// Date parses an RFC 5322 date-time value leniently: the day-of-week
// token (if present) is ignored, obsolete two/three-digit years and
// zone names (e.g. "GMT", "UT", "EST") are accepted, and any field that
// cannot be resolved leaves Valid false rather than rejecting the whole
// header.
func Date(raw []byte) message.HeaderValue {
	s := strings.TrimSpace(FoldAndTrim(raw))
	dt := parseDateTime(s)
	return message.HeaderValue{Kind: message.ValueDateTime, DateTime: &dt}
}

func parseDateTime(s string) message.DateTime {
	var dt message.DateTime

	if comma := strings.IndexByte(s, ','); comma >= 0 {
		s = s[comma+1:]
	}
	s = strings.TrimSpace(s)
	fields := strings.Fields(s)
	if len(fields) < 4 {
		return dt
	}

	day, err := strconv.Atoi(fields[0])
	if err != nil {
		return dt
	}
	mon, ok := monthNames[strings.ToLower(fields[1])[:min3(len(fields[1]))]]
	if !ok {
		return dt
	}
	year, err := strconv.Atoi(fields[2])
	if err != nil {
		return dt
	}
	if year < 100 {
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
	}

	timeParts := strings.Split(fields[3], ":")
	if len(timeParts) < 2 {
		return dt
	}
	hour, err := strconv.Atoi(timeParts[0])
	if err != nil {
		return dt
	}
	minute, err := strconv.Atoi(timeParts[1])
	if err != nil {
		return dt
	}
	second := 0
	if len(timeParts) >= 3 {
		second, _ = strconv.Atoi(timeParts[2])
	}

	dt.Year, dt.Month, dt.Day = int32(year), mon, int32(day)
	dt.Hour, dt.Minute, dt.Second = int32(hour), int32(minute), int32(second)
	dt.Valid = true

	if len(fields) >= 5 {
		zh, zm, before, zok := parseZone(fields[4])
		if zok {
			dt.TZHour, dt.TZMinute, dt.TZBeforeGMT = zh, zm, before
		}
	}
	return dt
}

func min3(n int) int {
	if n < 3 {
		return n
	}
	return 3
}

// parseZone parses a numeric zone ("+0000", "-0500") or one of the
// obsolete alphabetic zones from RFC 5322 §4.3.
func parseZone(z string) (hour, minute int32, before bool, ok bool) {
	if len(z) == 5 && (z[0] == '+' || z[0] == '-') {
		h, err1 := strconv.Atoi(z[1:3])
		m, err2 := strconv.Atoi(z[3:5])
		if err1 != nil || err2 != nil {
			return 0, 0, false, false
		}
		return int32(h), int32(m), z[0] == '-', true
	}
	switch strings.ToUpper(z) {
	case "UT", "GMT", "Z":
		return 0, 0, false, true
	case "EST":
		return 5, 0, true, true
	case "EDT":
		return 4, 0, true, true
	case "CST":
		return 6, 0, true, true
	case "CDT":
		return 5, 0, true, true
	case "MST":
		return 7, 0, true, true
	case "MDT":
		return 6, 0, true, true
	case "PST":
		return 8, 0, true, true
	case "PDT":
		return 7, 0, true, true
	}
	return 0, 0, false, false
}
