package cache

import "fmt"

// SnapshotKey builds the cache key for one dataset's query snapshot.
func SnapshotKey(dataset, queryKey string) string {
	if queryKey == "" {
		queryKey = "_"
	}
	return fmt.Sprintf("snap:%s:%s", dataset, queryKey)
}

// SnapshotPattern matches every snapshot of a dataset.
func SnapshotPattern(dataset string) string {
	return fmt.Sprintf("snap:%s:*", dataset)
}
