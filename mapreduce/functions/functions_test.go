package functions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type kv struct {
	key, value string
}

func collect(emitted *[]kv) func(string, string) {
	return func(key, value string) {
		*emitted = append(*emitted, kv{key, value})
	}
}

func TestWordCountMap(t *testing.T) {
	var emitted []kv
	WordCountMap(0, "Hello, world! hello", collect(&emitted))
	require.Equal(t, []kv{
		{"hello", "1"},
		{"world", "1"},
		{"hello", "1"},
	}, emitted)
}

func TestWordCountMapEmptyLine(t *testing.T) {
	var emitted []kv
	WordCountMap(0, "  ... !!! ", collect(&emitted))
	require.Empty(t, emitted)
}

func TestWordCountReduce(t *testing.T) {
	var emitted []kv
	WordCountReduce("hello", []string{"1", "1", "2", "oops"}, collect(&emitted))
	require.Equal(t, []kv{{"hello", "4"}}, emitted)
}

func TestInvertedIndexMap(t *testing.T) {
	var emitted []kv
	InvertedIndexMap(3, "Go go GO", collect(&emitted))
	require.Equal(t, []kv{
		{"go", "3"},
		{"go", "3"},
		{"go", "3"},
	}, emitted)
}

func TestInvertedIndexReduce(t *testing.T) {
	var emitted []kv
	InvertedIndexReduce("go", []string{"2", "0", "2", "1"}, collect(&emitted))
	require.Equal(t, []kv{{"go", "0,1,2"}}, emitted)
}
