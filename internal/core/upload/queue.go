package upload

import "slices"

// Queue holds the staged batch. Staging replaces the batch; it never
// accumulates. Each Stage starts a new generation so a commit only clears
// the batch it actually sent.
//
// Queue is not safe for concurrent use.
type Queue struct {
	files []File
	gen   uint64
}

// Stage replaces the queue contents with files and returns the new batch
// generation.
func (q *Queue) Stage(files []File) uint64 {
	q.files = slices.Clone(files)
	q.gen++
	return q.gen
}

// Files returns a copy of the staged files.
func (q *Queue) Files() []File {
	return slices.Clone(q.files)
}

// Batch returns the staged files with their generation.
func (q *Queue) Batch() ([]File, uint64) {
	return q.Files(), q.gen
}

// Len returns the number of staged files.
func (q *Queue) Len() int {
	return len(q.files)
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.files = nil
}

// ClearBatch empties the queue only if gen is still the staged generation.
// It reports whether the queue was cleared.
func (q *Queue) ClearBatch(gen uint64) bool {
	if q.gen != gen {
		return false
	}
	q.Clear()
	return true
}
