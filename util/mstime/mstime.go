package mstime

import "time"

const (
	nanosecondsInMillisecond = int64(time.Millisecond / time.Nanosecond)
	millisecondsInSecond     = int64(time.Second / time.Millisecond)
)

// NowUnixMilliseconds returns the current time as milliseconds since the
// unix epoch. Block timestamps are kept in this unit.
func NowUnixMilliseconds() int64 {
	return TimeToUnixMilli(time.Now())
}

// UnixMilliToTime converts milliseconds since the unix epoch to a time.Time.
func UnixMilliToTime(ms int64) time.Time {
	seconds := ms / millisecondsInSecond
	nanoseconds := (ms - seconds*millisecondsInSecond) * nanosecondsInMillisecond
	return time.Unix(seconds, nanoseconds)
}

// TimeToUnixMilli truncates t to millisecond precision.
func TimeToUnixMilli(t time.Time) int64 {
	return t.UnixNano() / nanosecondsInMillisecond
}
