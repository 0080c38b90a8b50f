package functions

import (
	"strconv"
	"strings"
	"unicode"

	"mr/mapreduce/types"
	"mr/utils"
)

// tokenize splits a line into words, removing punctuation and
// converting to lower case.
func tokenize(line string) []string {
	ff := func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsNumber(r) }
	words := strings.FieldsFunc(line, ff)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return words
}

// WordCountMap emits (word, "1") for every word in the line.
func WordCountMap(lineIdx int, line string, emit types.EmitFunc) {
	for _, word := range tokenize(line) {
		emit(word, "1")
	}
}

// WordCountReduce sums the per-word counts. Values that are not numbers
// are ignored rather than failing the whole key.
func WordCountReduce(key string, values []string, emit types.EmitFunc) {
	total := 0
	for _, v := range values {
		n, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		total += n
	}
	emit(key, strconv.Itoa(total))
}

// InvertedIndexMap emits (word, lineIdx) for every word in the line.
func InvertedIndexMap(lineIdx int, line string, emit types.EmitFunc) {
	for _, word := range tokenize(line) {
		emit(word, strconv.Itoa(lineIdx))
	}
}

// InvertedIndexReduce emits the sorted, de-duplicated list of line ids
// the word appeared on, comma separated.
func InvertedIndexReduce(key string, values []string, emit types.EmitFunc) {
	lineIDs := utils.NewOrderedList[string]()
	for _, v := range values {
		lineIDs.AddNoDuplicate(v)
	}
	emit(key, strings.Join(lineIDs.GetUnderlyingList(), ","))
}
