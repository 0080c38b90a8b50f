package mapreduce

import (
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"mr/mapreduce/types"
)

// splitMap emits (word, "1") for every whitespace-separated token.
func splitMap(lineIdx int, line string, emit types.EmitFunc) {
	for _, word := range strings.Fields(line) {
		emit(word, "1")
	}
}

func readFile(t *testing.T, filename string) []byte {
	t.Helper()
	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	return data
}

func TestNewMapperRejectsInvalidReducerCount(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := NewMapper(0, n)
		require.Error(t, err, "numReducers=%d", n)
	}
}

func TestPartitionDeterminism(t *testing.T) {
	m1, err := NewMapper(0, 5)
	require.NoError(t, err)
	m2, err := NewMapper(7, 5)
	require.NoError(t, err)

	keys := []string{"a", "b", "apple", "banana", "mapreduce", "07", ""}
	for _, key := range keys {
		p := m1.Partition(key)
		require.GreaterOrEqual(t, p, 0)
		require.Less(t, p, 5)
		// stable across repeated calls and across mapper instances
		require.Equal(t, p, m1.Partition(key))
		require.Equal(t, p, m2.Partition(key))
	}
}

func TestPartitionSingleReducer(t *testing.T) {
	m, err := NewMapper(0, 1)
	require.NoError(t, err)
	for _, key := range []string{"a", "b", "anything"} {
		require.Equal(t, 0, m.Partition(key))
	}
}

func TestMapperWriteData(t *testing.T) {
	dir := t.TempDir()
	m, err := NewMapper(0, 2)
	require.NoError(t, err)

	m.ProcessLine(0, "a b a", splitMap)
	written, err := m.WriteData(dir)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, written)

	require.JSONEq(t, `{"a":["1","1"]}`, string(readFile(t, IntermediateFilename(dir, 0, 0))))
	require.JSONEq(t, `{"b":["1"]}`, string(readFile(t, IntermediateFilename(dir, 0, 1))))
}

func TestMapperSkipsEmptyPartitions(t *testing.T) {
	dir := t.TempDir()
	m, err := NewMapper(1, 2)
	require.NoError(t, err)

	// "b" partitions to reducer 1 with two reducers
	m.ProcessLine(0, "b", splitMap)
	written, err := m.WriteData(dir)
	require.NoError(t, err)
	require.Equal(t, []int{1}, written)

	_, err = os.Stat(IntermediateFilename(dir, 1, 0))
	require.True(t, os.IsNotExist(err))
}

func TestMapperPreservesEmissionOrder(t *testing.T) {
	dir := t.TempDir()
	m, err := NewMapper(0, 1)
	require.NoError(t, err)

	// emit the line index so within-key order is observable
	indexMap := func(lineIdx int, line string, emit types.EmitFunc) {
		for _, word := range strings.Fields(line) {
			emit(word, strconv.Itoa(lineIdx))
		}
	}
	m.ProcessLine(0, "a a", indexMap)
	m.ProcessLine(1, "a", indexMap)
	m.ProcessLine(2, "a", indexMap)

	_, err = m.WriteData(dir)
	require.NoError(t, err)
	require.JSONEq(t, `{"a":["0","0","1","2"]}`, string(readFile(t, IntermediateFilename(dir, 0, 0))))
}

func TestMapperWriteDataIdempotent(t *testing.T) {
	dir := t.TempDir()
	m, err := NewMapper(0, 2)
	require.NoError(t, err)
	m.ProcessLine(0, "a b a b c", splitMap)

	first, err := m.WriteData(dir)
	require.NoError(t, err)
	firstBytes := readFile(t, IntermediateFilename(dir, 0, 0))

	second, err := m.WriteData(dir)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, firstBytes, readFile(t, IntermediateFilename(dir, 0, 0)))
}
