package mapreduce

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"mr/mapreduce/types"
	"mr/utils"
)

var (
	errInvalidReducerCount = errors.New("number of reducers must be at least 1")
	errInvalidMapperCount  = errors.New("number of mappers must be at least 1")
)

// IntermediateFilename returns the path of the intermediate file for a
// (mapper, reducer) pair. Every mapper and reducer in a job must agree
// on this name byte for byte.
func IntermediateFilename(dir string, mapperID, reducerID int) string {
	return filepath.Join(dir, fmt.Sprintf("m%dr%d.txt", mapperID, reducerID))
}

// Mapper accumulates the key-value pairs emitted by a user map function,
// bucketed by the reducer each key partitions to, and flushes every
// bucket to its own intermediate file.
type Mapper struct {
	id          int
	numReducers int

	// mapData maps reducer id -> key -> values in emission order.
	// Buckets appear lazily: a partition nothing was emitted to stays
	// absent and produces no file.
	mapData map[int]map[string][]string
}

// NewMapper creates a mapper with a fixed identity and partition count.
// No I/O happens until WriteData.
func NewMapper(mapperID, numReducers int) (*Mapper, error) {
	if numReducers < 1 {
		return nil, errInvalidReducerCount
	}
	return &Mapper{
		id:          mapperID,
		numReducers: numReducers,
		mapData:     make(map[int]map[string][]string),
	}, nil
}

// ID returns the mapper's identity.
func (m *Mapper) ID() int {
	return m.id
}

// Partition returns the reducer bucket for key. A given key always
// partitions to the same bucket for the lifetime of the mapper.
func (m *Mapper) Partition(key string) int {
	return utils.PartitionKey(key, m.numReducers)
}

// ProcessLine runs mapFn on one input line, handing it an emit callback
// bound to this mapper. The callback must not be retained after the call.
func (m *Mapper) ProcessLine(lineIdx int, line string, mapFn types.MapFunc) {
	mapFn(lineIdx, line, m.emitIntermediate)
}

// emitIntermediate appends value to the sequence for key inside the
// bucket Partition(key).
func (m *Mapper) emitIntermediate(key, value string) {
	reducerID := m.Partition(key)
	bucket, ok := m.mapData[reducerID]
	if !ok {
		bucket = make(map[string][]string)
		m.mapData[reducerID] = bucket
	}
	bucket[key] = append(bucket[key], value)
}

// WriteData flushes every non-empty partition to its own intermediate
// file under outputPath, creating the directory if needed, and returns
// the written reducer ids in ascending order. A partition that fails to
// write aborts the whole flush; partial output is reported, never
// silently completed around.
func (m *Mapper) WriteData(outputPath string) ([]int, error) {
	if err := os.MkdirAll(outputPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create intermediate directory %s: %w", outputPath, err)
	}
	reducerIDs := utils.NewOrderedList[int]()
	for reducerID := range m.mapData {
		reducerIDs.Add(reducerID)
	}
	for _, reducerID := range reducerIDs.GetUnderlyingList() {
		// json.Marshal sorts map keys, so re-writing identical state
		// yields byte-identical files
		data, err := json.Marshal(m.mapData[reducerID])
		if err != nil {
			return nil, fmt.Errorf("failed to encode partition %d: %w", reducerID, err)
		}
		filename := IntermediateFilename(outputPath, m.id, reducerID)
		if err := os.WriteFile(filename, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write partition %d: %w", reducerID, err)
		}
	}
	return reducerIDs.GetUnderlyingList(), nil
}
