package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderedListAdd(t *testing.T) {
	l := NewOrderedList[int]()
	l.Add(3).Add(1).Add(2)
	require.Equal(t, []int{1, 2, 3}, l.GetUnderlyingList())
	require.Equal(t, 3, l.Len())

	l.Add(2)
	require.Equal(t, []int{1, 2, 2, 3}, l.GetUnderlyingList())
}

func TestOrderedListAddNoDuplicate(t *testing.T) {
	l := NewOrderedList[int]()
	l.AddNoDuplicate(2).AddNoDuplicate(0).AddNoDuplicate(2)
	require.Equal(t, []int{0, 2}, l.GetUnderlyingList())
}

func TestOrderedListRemove(t *testing.T) {
	l := NewOrderedList[string]()
	l.Add("b").Add("a").Add("b")
	l.Remove("b")
	require.Equal(t, []string{"a", "b"}, l.GetUnderlyingList())
	l.Remove("missing")
	require.Equal(t, []string{"a", "b"}, l.GetUnderlyingList())
}

func TestOrderedListToSet(t *testing.T) {
	l := NewOrderedList[int]()
	l.Add(1).Add(1).Add(2)
	require.Equal(t, map[int]struct{}{1: {}, 2: {}}, l.ToSet())
}
