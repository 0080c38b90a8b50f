package master

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sys/unix"

	"mr/mapreduce"
	"mr/mapreduce/types"
	"mr/utils"
)

// maxAttempts bounds how often a crashed mapper is restarted before the
// job is declared failed.
const maxAttempts = 3

// Config is the job configuration file.
type Config struct {
	InputFile   string `json:"input_file"`
	NumMappers  int    `json:"number_of_mapper"`
	NumReducers int    `json:"number_of_reducer"`
}

// Validate checks the configuration for values the job cannot run with.
func (c Config) Validate() error {
	if c.InputFile == "" {
		return fmt.Errorf("input_file must be set")
	}
	if c.NumMappers < 1 {
		return fmt.Errorf("number_of_mapper must be at least 1, got %d", c.NumMappers)
	}
	if c.NumReducers < 1 {
		return fmt.Errorf("number_of_reducer must be at least 1, got %d", c.NumReducers)
	}
	return nil
}

// ReadConfig reads and validates a job configuration file.
func ReadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("unable to read the requested file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("unable to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Master orchestrates one MapReduce job: it splits the input among the
// mappers, runs every mapper to completion, then runs every reducer
// over the intermediate files the mappers left behind. Mappers and
// reducers never talk to each other; the intermediate files are the
// only channel.
type Master struct {
	cfg      Config
	mapFn    types.MapFunc
	reduceFn types.ReduceFunc

	jobID  string
	tmpDir string
	outDir string

	// killMapper makes the chosen mapper fail its first attempt, to
	// exercise the retry path. -1 disables it.
	killMapper int

	inputFiles       []string
	activePartitions *utils.OrderedList[int]
}

// NewMaster creates a master for one job. Temporary split/intermediate
// files go under tmpRoot, final output under outRoot, both in a
// directory named after the job id.
func NewMaster(cfg Config, mapFn types.MapFunc, reduceFn types.ReduceFunc, tmpRoot, outRoot string, killMapper int) *Master {
	jobID := strconv.FormatInt(time.Now().Unix(), 10)
	return &Master{
		cfg:              cfg,
		mapFn:            mapFn,
		reduceFn:         reduceFn,
		jobID:            jobID,
		tmpDir:           filepath.Join(tmpRoot, jobID),
		outDir:           filepath.Join(outRoot, jobID),
		killMapper:       killMapper,
		activePartitions: utils.NewOrderedList[int](),
	}
}

// OutputDir returns the directory the final output files are written to.
func (m *Master) OutputDir() string {
	return m.outDir
}

// Run executes the whole job. The temporary directory is removed on
// success; on failure it is left in place for inspection.
func (m *Master) Run() error {
	if err := m.cfg.Validate(); err != nil {
		return err
	}
	if err := m.checkFreespace(); err != nil {
		return err
	}
	if err := m.splitInputData(); err != nil {
		return err
	}
	log.Printf("[master] job %s: starting %d mappers", m.jobID, m.cfg.NumMappers)
	if err := m.runMappers(); err != nil {
		return err
	}
	log.Printf("[master] job %s: active partitions %v", m.jobID, m.activePartitions.GetUnderlyingList())
	log.Printf("[master] job %s: starting %d reducers", m.jobID, m.cfg.NumReducers)
	if err := m.runReducers(); err != nil {
		return err
	}
	if err := m.logManifest(); err != nil {
		return err
	}
	if err := os.RemoveAll(m.tmpDir); err != nil {
		log.Printf("[master] job %s: failed to remove tmp dir %s: %v", m.jobID, m.tmpDir, err)
	}
	log.Printf("[master] job %s completed, output is available at %s", m.jobID, m.outDir)
	return nil
}

// checkFreespace refuses to start a job when the filesystem cannot hold
// the input split plus an intermediate spill of roughly the same size.
// It only supports Unix-like systems.
func (m *Master) checkFreespace() error {
	fi, err := os.Stat(m.cfg.InputFile)
	if err != nil {
		return fmt.Errorf("unable to read the requested input file: %w", err)
	}
	if err := os.MkdirAll(m.tmpDir, 0755); err != nil {
		return fmt.Errorf("failed to create tmp dir %s: %w", m.tmpDir, err)
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(m.tmpDir, &stat); err != nil {
		return fmt.Errorf("statfs %s: %w", m.tmpDir, err)
	}
	free := stat.Bavail * uint64(stat.Bsize)
	need := uint64(fi.Size()) * 2
	if free < need {
		return fmt.Errorf("not enough free space under %s: need %d bytes, have %d", m.tmpDir, need, free)
	}
	log.Printf("[master] job %s: input %d bytes, %d bytes free under %s", m.jobID, fi.Size(), free, m.tmpDir)
	return nil
}

// splitInputData distributes the input lines round-robin over one split
// file per mapper.
func (m *Master) splitInputData() error {
	splitDir := filepath.Join(m.tmpDir, "input")
	if err := os.MkdirAll(splitDir, 0755); err != nil {
		return fmt.Errorf("failed to create split dir %s: %w", splitDir, err)
	}
	in, err := os.Open(m.cfg.InputFile)
	if err != nil {
		return fmt.Errorf("unable to read the requested input file: %w", err)
	}
	defer in.Close()

	m.inputFiles = make([]string, 0, m.cfg.NumMappers)
	writers := make([]*bufio.Writer, 0, m.cfg.NumMappers)
	for i := 0; i < m.cfg.NumMappers; i++ {
		f, err := os.Create(filepath.Join(splitDir, strconv.Itoa(i)+".txt"))
		if err != nil {
			return fmt.Errorf("failed to create split file for mapper %d: %w", i, err)
		}
		defer f.Close()
		m.inputFiles = append(m.inputFiles, f.Name())
		writers = append(writers, bufio.NewWriter(f))
	}

	scanner := bufio.NewScanner(in)
	for idx := 0; scanner.Scan(); idx++ {
		w := writers[idx%m.cfg.NumMappers]
		if _, err := w.WriteString(scanner.Text()); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to scan input file: %w", err)
	}
	for _, w := range writers {
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func (m *Master) intermediateDir() string {
	return filepath.Join(m.tmpDir, "intermediate")
}

type mapperResult struct {
	mapperID   int
	reducerIDs []int
	err        error
}

// runMappers runs every mapper concurrently and collects the partition
// ids they actually wrote. A crashed mapper is restarted up to
// maxAttempts times before the job fails.
func (m *Master) runMappers() error {
	results := make(chan mapperResult, m.cfg.NumMappers)
	for id := 0; id < m.cfg.NumMappers; id++ {
		go m.runMapper(id, id == m.killMapper, results)
	}
	attempts := make([]int, m.cfg.NumMappers)
	for pending := m.cfg.NumMappers; pending > 0; {
		res := <-results
		if res.err != nil {
			attempts[res.mapperID]++
			if attempts[res.mapperID] >= maxAttempts {
				return fmt.Errorf("mapper %d failed after %d attempts: %w", res.mapperID, maxAttempts, res.err)
			}
			log.Printf("[master] job %s: mapper %d has crashed, restarting: %v", m.jobID, res.mapperID, res.err)
			go m.runMapper(res.mapperID, false, results)
			continue
		}
		pending--
		for _, reducerID := range res.reducerIDs {
			m.activePartitions.AddNoDuplicate(reducerID)
		}
	}
	return nil
}

// runMapper executes one mapper over its input split. A panic inside
// the user map function is reported as a failure instead of taking down
// the whole job.
func (m *Master) runMapper(mapperID int, kill bool, results chan<- mapperResult) {
	res := mapperResult{mapperID: mapperID}
	defer func() {
		if r := recover(); r != nil {
			res.err = fmt.Errorf("mapper %d panicked: %v", mapperID, r)
		}
		results <- res
	}()

	if kill {
		res.err = fmt.Errorf("mapper %d killed by fault injection", mapperID)
		return
	}

	mapper, err := mapreduce.NewMapper(mapperID, m.cfg.NumReducers)
	if err != nil {
		res.err = err
		return
	}
	in, err := os.Open(m.inputFiles[mapperID])
	if err != nil {
		res.err = err
		return
	}
	defer in.Close()
	scanner := bufio.NewScanner(in)
	for idx := 0; scanner.Scan(); idx++ {
		mapper.ProcessLine(idx, scanner.Text(), m.mapFn)
	}
	if err := scanner.Err(); err != nil {
		res.err = err
		return
	}
	res.reducerIDs, res.err = mapper.WriteData(m.intermediateDir())
}

type reducerResult struct {
	reducerID int
	err       error
}

// runReducers runs every reducer concurrently. Each reducer owns a
// disjoint output file, so they need no coordination beyond the
// intermediate files already on disk.
func (m *Master) runReducers() error {
	results := make(chan reducerResult, m.cfg.NumReducers)
	for id := 0; id < m.cfg.NumReducers; id++ {
		go m.runReducer(id, results)
	}
	var firstErr error
	for i := 0; i < m.cfg.NumReducers; i++ {
		res := <-results
		if res.err != nil {
			log.Printf("[master] job %s: reducer %d failed: %v", m.jobID, res.reducerID, res.err)
			if firstErr == nil {
				firstErr = fmt.Errorf("reducer %d: %w", res.reducerID, res.err)
			}
		}
	}
	return firstErr
}

// runReducer executes one reducer end to end: load, reduce, write.
func (m *Master) runReducer(reducerID int, results chan<- reducerResult) {
	res := reducerResult{reducerID: reducerID}
	defer func() {
		if r := recover(); r != nil {
			res.err = fmt.Errorf("reducer %d panicked: %v", reducerID, r)
		}
		results <- res
	}()

	reducer, err := mapreduce.NewReducer(m.intermediateDir(), reducerID, m.cfg.NumMappers)
	if err != nil {
		res.err = err
		return
	}
	reducer.ReduceAll(m.reduceFn)
	res.err = reducer.WriteData(m.outDir)
}

// logManifest logs every final output file with its size and checksum.
func (m *Master) logManifest() error {
	for id := 0; id < m.cfg.NumReducers; id++ {
		filename := mapreduce.FinalFilename(m.outDir, id)
		f, err := os.Open(filename)
		if err != nil {
			return fmt.Errorf("missing output file %s: %w", filename, err)
		}
		fi, err := f.Stat()
		if err != nil {
			f.Close()
			return err
		}
		hash, err := utils.HashReader(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to hash output file %s: %w", filename, err)
		}
		log.Printf("[master] job %s: output %s (%d bytes, md5 %s)", m.jobID, filename, fi.Size(), hash)
	}
	return nil
}
