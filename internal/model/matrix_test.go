package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntersectionMatrix_GetAndIndex(t *testing.T) {
	t.Parallel()

	m := NewIntersectionMatrix([]string{"a.com", "b.com"})
	m.Counts[0][0] = 3
	m.Counts[0][1] = 1
	m.Counts[1][0] = 1
	m.Counts[1][1] = 2

	assert.Equal(t, 2, m.Size())
	assert.Equal(t, 1, m.Index("b.com"))
	assert.Equal(t, -1, m.Index("c.com"))

	got, ok := m.Get("a.com", "b.com")
	require.True(t, ok)
	assert.Equal(t, 1, got)

	_, ok = m.Get("a.com", "c.com")
	assert.False(t, ok)
}

func TestIntersectionMatrix_Rows(t *testing.T) {
	t.Parallel()

	m := NewIntersectionMatrix([]string{"a.com", "b.com"})
	m.Counts[0][0] = 3
	m.Counts[0][1] = 1
	m.Counts[1][0] = 1
	m.Counts[1][1] = 2

	rows := m.Rows()
	assert.Equal(t, map[string]map[string]int{
		"a.com": {"a.com": 3, "b.com": 1},
		"b.com": {"a.com": 1, "b.com": 2},
	}, rows)
}

func TestNewIntersectionMatrix_Empty(t *testing.T) {
	t.Parallel()

	m := NewIntersectionMatrix(nil)
	assert.Equal(t, 0, m.Size())
	assert.Empty(t, m.Rows())
}
