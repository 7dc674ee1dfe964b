package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExampleSorts(t *testing.T) {
	e := NewExample("e1", "catA", []Feature{{ID: 7, Value: 1}, {ID: 2, Value: 2}, {ID: 7, Value: 3}, {ID: 0, Value: 4}})

	require.True(t, e.IsSorted())
	assert.Equal(t, []Feature{{ID: 0, Value: 4}, {ID: 2, Value: 2}, {ID: 7, Value: 1}}, e.Features)
}

func TestRetainKeepsOrder(t *testing.T) {
	e := NewExample("e1", "catA", []Feature{{ID: 1, Value: 1}, {ID: 2, Value: 2}, {ID: 3, Value: 3}, {ID: 4, Value: 4}})
	e.Retain(func(f Feature) bool { return f.ID%2 == 0 })

	assert.Equal(t, []Feature{{ID: 2, Value: 2}, {ID: 4, Value: 4}}, e.Features)
	assert.True(t, e.IsSorted())
}

func TestMaxID(t *testing.T) {
	e := NewExample("e1", "catA", nil)
	_, ok := e.MaxID()
	assert.False(t, ok)

	e = NewExample("e2", "catB", []Feature{{ID: 9}, {ID: 3}})
	id, ok := e.MaxID()
	assert.True(t, ok)
	assert.Equal(t, FeatureID(9), id)
}

func TestClone(t *testing.T) {
	e := NewExample("e1", "catA", []Feature{{ID: 1, Value: 1}})
	c := e.Clone()
	c.Features[0].Value = 42

	assert.Equal(t, 1.0, e.Features[0].Value)
	assert.Equal(t, "e1", c.ID)
}

func TestIsSortedDetectsDuplicates(t *testing.T) {
	e := &Example{Features: []Feature{{ID: 1}, {ID: 1}}}
	assert.False(t, e.IsSorted())
}
