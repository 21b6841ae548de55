package asyncop

import "time"

// EstimateProgress converts elapsed time into a display-only percentage in
// [0, 99]. The estimate is synthetic: it does not gate real completion and
// is capped below 100 so the UI never shows a finished bar before the work
// actually succeeds. The tracker snaps progress to 100 only on success.
//
// The function is pure and total: a non-positive timeout or negative elapsed
// yields 0.
func EstimateProgress(elapsed, timeout time.Duration) int {
	if timeout <= 0 || elapsed <= 0 {
		return 0
	}
	percent := int(elapsed * 100 / timeout)
	if percent > 99 {
		return 99
	}
	return percent
}
