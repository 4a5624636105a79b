package merge

import "scene-merge/core/compare"

// KeyValueConflict decides whether two differences of the same key are
// in conflict. Both differences must target the same key, matched
// case-insensitively.
//
// Matching changes never conflict: if both sides removed the key, or
// both set it to the same value, the edits converge. Everything else
// (one side removes while the other keeps a value, or both sides set
// differing values) is a conflict.
func KeyValueConflict(sourceDiff, targetDiff compare.KeyValueDifference) bool {
	switch targetDiff.Kind {
	case compare.KeyValueRemoved:
		return sourceDiff.Kind != compare.KeyValueRemoved

	case compare.KeyValueAdded, compare.KeyValueChanged:
		return sourceDiff.Kind == compare.KeyValueRemoved || sourceDiff.Value != targetDiff.Value
	}
	return false
}

// findKeyValueDiff returns the difference targeting the given key,
// matched case-insensitively.
func findKeyValueDiff(diffs []compare.KeyValueDifference, key string) (compare.KeyValueDifference, bool) {
	for _, diff := range diffs {
		if diff.SameKey(key) {
			return diff, true
		}
	}
	return compare.KeyValueDifference{}, false
}
