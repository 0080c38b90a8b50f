package main

import (
	"flag"
	"fmt"

	"mr/cmd/mr/master"
	"mr/mapreduce/functions"
	"mr/mapreduce/types"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to the job configuration file")
	jobName := flag.String("job", "wordcount", "Built-in job to run (wordcount or invertedindex)")
	tmpRoot := flag.String("tmpRoot", "tmp", "Root directory for split and intermediate files")
	outRoot := flag.String("outRoot", "output", "Root directory for final output files")
	killMapper := flag.Int("killMapper", -1, "Mapper index to fail on its first attempt (fault injection)")
	flag.Parse()

	cfg, err := master.ReadConfig(*configPath)
	if err != nil {
		panic(err)
	}

	var mapFn types.MapFunc
	var reduceFn types.ReduceFunc
	switch *jobName {
	case "wordcount":
		mapFn, reduceFn = functions.WordCountMap, functions.WordCountReduce
	case "invertedindex":
		mapFn, reduceFn = functions.InvertedIndexMap, functions.InvertedIndexReduce
	default:
		panic(fmt.Sprintf("unknown job %q", *jobName))
	}

	fmt.Printf("[mr] input: %s, mappers: %d, reducers: %d, job: %s\n",
		cfg.InputFile, cfg.NumMappers, cfg.NumReducers, *jobName)

	m := master.NewMaster(cfg, mapFn, reduceFn, *tmpRoot, *outRoot, *killMapper)
	if err := m.Run(); err != nil {
		panic(err)
	}
}
