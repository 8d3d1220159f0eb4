package handlers

import "time"

func parseDate(loc *time.Location, dateStr string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", dateStr, loc)
}

func parseDateTime(loc *time.Location, value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", value, loc)
}

func parseTimeOfDay(value string) (time.Time, error) {
	return time.Parse("15:04", value)
}
