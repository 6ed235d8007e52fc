package steps

// HistoryMinutes is the width of the rolling step window in minute buckets.
const HistoryMinutes = 60

const minuteMS = 60000

// hourHistogram is a fixed 60-slot ring of per-minute step counts with an
// O(1) running sum, giving the step count over the trailing hour at
// one-minute granularity. bucketStartMS == 0 doubles as the "not yet
// aligned" sentinel; a first update at exactly 0 ms therefore realigns
// once more on the following tick (known quirk, kept).
type hourHistogram struct {
	buckets       [HistoryMinutes]uint16
	currentIndex  uint8
	bucketStartMS uint32
	runningSum    uint32
}

// reset clears all buckets and anchors the current minute at nowMS. This
// is the only way the ring enters its valid state.
func (h *hourHistogram) reset(nowMS uint32) {
	h.buckets = [HistoryMinutes]uint16{}
	h.currentIndex = 0
	h.bucketStartMS = nowMS
	h.runningSum = 0
}

// advance rotates the current-minute bucket forward until it covers
// nowMS. Must be called before recording any step for the same tick.
func (h *hourHistogram) advance(nowMS uint32) {
	if h.bucketStartMS == 0 {
		h.reset(nowMS)
		return
	}

	// Move forward in 60-second strides until the ring is up to date.
	// Subtraction wraps with the millisecond clock.
	for nowMS-h.bucketStartMS >= minuteMS {
		h.bucketStartMS += minuteMS
		h.currentIndex = uint8((int(h.currentIndex) + 1) % HistoryMinutes)

		// The incoming bucket still holds the minute that is now 60
		// minutes old; evict it from the sum before reuse.
		h.runningSum -= uint32(h.buckets[h.currentIndex])
		h.buckets[h.currentIndex] = 0
	}
}

// recordStep counts one step into the current minute.
func (h *hourHistogram) recordStep() {
	h.buckets[h.currentIndex]++
	h.runningSum++
}

// stepsLastHour returns the trailing-hour step count, clamped to the
// reporting type's maximum.
func (h *hourHistogram) stepsLastHour() uint16 {
	if h.runningSum > 0xFFFF {
		return 0xFFFF
	}
	return uint16(h.runningSum)
}
