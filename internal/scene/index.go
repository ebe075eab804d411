package scene

import (
	"sort"

	"github.com/wavecraft-audio/wavecraft/internal/engine"
)

// sceneEntry is one gathered automation point.
type sceneEntry struct {
	time    engine.FramePos
	payload *Payload
}

// sceneIndex is an immutable, time-ordered snapshot of all scene payloads
// in the marker store. It is rebuilt wholesale and swapped atomically, so
// the playback path never iterates a partially built index. Entries with
// equal times keep their gather order; no deduplication happens.
type sceneIndex struct {
	entries []sceneEntry
}

func buildIndex(entries []sceneEntry) *sceneIndex {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].time < entries[j].time
	})
	return &sceneIndex{entries: entries}
}

// from returns the entries with time >= start in ascending time order.
func (idx *sceneIndex) from(start engine.FramePos) []sceneEntry {
	i := sort.Search(len(idx.entries), func(i int) bool {
		return idx.entries[i].time >= start
	})
	return idx.entries[i:]
}

// after returns the first entry with time strictly greater than pos, nil
// if none exists.
func (idx *sceneIndex) after(pos engine.FramePos) *sceneEntry {
	i := sort.Search(len(idx.entries), func(i int) bool {
		return idx.entries[i].time > pos
	})
	if i == len(idx.entries) {
		return nil
	}
	return &idx.entries[i]
}

func (idx *sceneIndex) len() int {
	return len(idx.entries)
}
