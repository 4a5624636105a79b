package compare_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scene-merge/core/compare"
)

func TestKeyValueDifference_Equal(t *testing.T) {
	tests := []struct {
		name string
		a    compare.KeyValueDifference
		b    compare.KeyValueDifference
		want bool
	}{
		{
			"SameKeyKindValue",
			compare.KeyValueDifference{Key: "origin", Value: "0 0 0", Kind: compare.KeyValueChanged},
			compare.KeyValueDifference{Key: "origin", Value: "0 0 0", Kind: compare.KeyValueChanged},
			true,
		},
		{
			"KeyCaseInsensitive",
			compare.KeyValueDifference{Key: "Origin", Value: "0 0 0", Kind: compare.KeyValueChanged},
			compare.KeyValueDifference{Key: "ORIGIN", Value: "0 0 0", Kind: compare.KeyValueChanged},
			true,
		},
		{
			"DifferingValue",
			compare.KeyValueDifference{Key: "origin", Value: "0 0 0", Kind: compare.KeyValueChanged},
			compare.KeyValueDifference{Key: "origin", Value: "1 1 1", Kind: compare.KeyValueChanged},
			false,
		},
		{
			"DifferingKind",
			compare.KeyValueDifference{Key: "origin", Value: "0 0 0", Kind: compare.KeyValueAdded},
			compare.KeyValueDifference{Key: "origin", Value: "0 0 0", Kind: compare.KeyValueChanged},
			false,
		},
		{
			"RemovedIgnoresValue",
			compare.KeyValueDifference{Key: "origin", Value: "stale", Kind: compare.KeyValueRemoved},
			compare.KeyValueDifference{Key: "origin", Value: "", Kind: compare.KeyValueRemoved},
			true,
		},
		{
			"DifferingKey",
			compare.KeyValueDifference{Key: "origin", Kind: compare.KeyValueRemoved},
			compare.KeyValueDifference{Key: "angle", Kind: compare.KeyValueRemoved},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestKeyValueDifference_SameKey(t *testing.T) {
	d := compare.KeyValueDifference{Key: "Classname"}
	assert.True(t, d.SameKey("classname"))
	assert.True(t, d.SameKey("CLASSNAME"))
	assert.False(t, d.SameKey("class"))
}
