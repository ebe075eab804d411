package engine

import "math"

// FramePos is a position or span on the session timeline, in audio frames.
type FramePos int64

// MaxFramePos is the largest representable timeline position, used as a
// "no position" sentinel in searches.
const MaxFramePos = FramePos(math.MaxInt64)
