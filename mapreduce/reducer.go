package mapreduce

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"mr/mapreduce/types"
)

// FinalFilename returns the path of the final output file for a reducer.
func FinalFilename(dir string, reducerID int) string {
	return filepath.Join(dir, strconv.Itoa(reducerID)+".txt")
}

// Reducer merges the intermediate files addressed to its partition from
// every mapper into one grouped mapping, runs a user reduce function
// over it, and writes a single final output file.
type Reducer struct {
	id              int
	numMappers      int
	intermediateDir string

	// finalDict maps key -> values merged across all mapper files, in
	// mapper id ascending order, file order within a mapper.
	finalDict map[string][]string
	// reducedData maps key -> final value, populated by ReduceAll.
	reducedData map[string]string
}

// NewReducer creates a reducer and immediately loads every intermediate
// file addressed to reducerID under intermediateDir.
func NewReducer(intermediateDir string, reducerID, numMappers int) (*Reducer, error) {
	if numMappers < 1 {
		return nil, errInvalidMapperCount
	}
	r := &Reducer{
		id:              reducerID,
		numMappers:      numMappers,
		intermediateDir: intermediateDir,
		finalDict:       make(map[string][]string),
		reducedData:     make(map[string]string),
	}
	r.loadIntermediateData()
	return r, nil
}

// ID returns the reducer's identity.
func (r *Reducer) ID() int {
	return r.id
}

// loadIntermediateData merges the contribution of every mapper, in
// mapper id ascending order. A missing file means that mapper emitted
// nothing to this partition. A file that cannot be read or parsed is
// logged and skipped; one corrupt mapper output must not abort the
// whole reducer.
func (r *Reducer) loadIntermediateData() {
	for mapperID := 0; mapperID < r.numMappers; mapperID++ {
		filename := IntermediateFilename(r.intermediateDir, mapperID, r.id)
		data, err := os.ReadFile(filename)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			log.Printf("[reducer %d] failed to read %s, skipping: %v", r.id, filename, err)
			continue
		}
		partition := make(map[string][]string)
		if err := json.Unmarshal(data, &partition); err != nil {
			log.Printf("[reducer %d] malformed intermediate file %s, skipping: %v", r.id, filename, err)
			continue
		}
		for key, values := range partition {
			r.finalDict[key] = append(r.finalDict[key], values...)
		}
	}
}

// ReduceAll runs reduceFn once per distinct key in the grouped mapping,
// handing it an emit callback bound to this reducer. Emitting the same
// key twice overwrites the earlier value: the last call wins.
func (r *Reducer) ReduceAll(reduceFn types.ReduceFunc) {
	for key, values := range r.finalDict {
		reduceFn(key, values, r.emitFinal)
	}
}

// emitFinal stores the final value for key.
func (r *Reducer) emitFinal(key, value string) {
	r.reducedData[key] = value
}

// WriteData writes the reduced mapping to a single file named after the
// reducer id under outputDir, creating the directory if needed.
func (r *Reducer) WriteData(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}
	data, err := json.Marshal(r.reducedData)
	if err != nil {
		return fmt.Errorf("failed to encode reduced data: %w", err)
	}
	filename := FinalFilename(outputDir, r.id)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", filename, err)
	}
	return nil
}

// FinalDict returns the grouped pre-reduction mapping, mainly for
// verification. ReduceAll does not touch it.
func (r *Reducer) FinalDict() map[string][]string {
	return r.finalDict
}
