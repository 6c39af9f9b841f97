//go:build !unix

package diag

// MaxRSSKB is unavailable outside unix builds; pycore stats falls back to
// reporting heap.Stats alone.
func MaxRSSKB() int64 {
	return -1
}
