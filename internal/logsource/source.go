// Package logsource resolves an input location into log files and reads
// them into parsed events, transparently handling gzip compression and
// byte-level decoding errors.
package logsource

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/crimson-sun/webhunt/internal/model"
	"github.com/crimson-sun/webhunt/internal/parser"
)

// logSuffixes are the file name endings included when walking a directory.
var logSuffixes = []string{".log", ".log.gz", ".txt", ".gz"}

// DefaultWorkers is the fan-out used by ReadAll when none is configured.
const DefaultWorkers = 4

// Source reads log files through a line parser.
type Source struct {
	parser  *parser.Parser
	workers int
}

// New creates a Source. workers <= 0 falls back to DefaultWorkers.
func New(p *parser.Parser, workers int) *Source {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Source{parser: p, workers: workers}
}

// Resolve expands an input path into the ordered list of log files to
// read. A plain file is returned as-is; a directory is walked recursively
// and every file with a known log suffix is included, in the walk's
// deterministic lexical order.
func (s *Source) Resolve(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("logsource resolve: %w", err)
	}
	if !info.IsDir() {
		return []string{input}, nil
	}

	var files []string
	err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		for _, suffix := range logSuffixes {
			if strings.HasSuffix(d.Name(), suffix) {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("logsource resolve: %w", err)
	}
	return files, nil
}

// ReadFile parses one log file and returns its events and the number of
// lines that failed to parse. Files ending in .gz are decompressed on the
// fly. Invalid bytes are replaced rather than aborting the read, and empty
// lines are skipped without counting as failures.
func (s *Source) ReadFile(path string) ([]model.Event, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("logsource open: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, 0, fmt.Errorf("logsource gzip %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	// Replace malformed UTF-8 instead of propagating it into patterns.
	r = transform.NewReader(r, unicode.UTF8.NewDecoder())

	events, failures := s.scan(r)
	return events, failures, nil
}

// scan reads r line by line with no length bound. Hostile payload lines
// can run far past any fixed buffer, and one oversized line must never
// cost the rest of the file.
func (s *Source) scan(r io.Reader) ([]model.Event, int) {
	var events []model.Event
	failures := 0

	br := bufio.NewReaderSize(r, 64*1024)
	for {
		line, err := br.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			ev, ok := s.parser.ParseLine(line)
			if ok {
				events = append(events, ev)
			} else {
				failures++
			}
		}
		if err != nil {
			if err != io.EOF {
				// A torn tail (e.g. truncated gzip member) costs the
				// remaining lines, not the whole run.
				slog.Warn("log read stopped early", "error", err)
			}
			return events, failures
		}
	}
}

// fileResult carries one file's read outcome through the worker fan-out.
type fileResult struct {
	events   []model.Event
	failures int
	err      error
}

// ReadAll resolves the input and reads every file, returning the merged
// event collection, the summed failure count, and the number of files
// read. Files are read concurrently but merged in resolution order, so the
// event stream is identical to a serial read. When the input is a
// directory, unreadable files are logged and skipped; a single explicit
// file propagates its error.
func (s *Source) ReadAll(input string) ([]model.Event, int, int, error) {
	files, err := s.Resolve(input)
	if err != nil {
		return nil, 0, 0, err
	}
	if len(files) == 0 {
		return nil, 0, 0, nil
	}

	singleFile := len(files) == 1 && files[0] == input

	results := make([]fileResult, len(files))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for i, path := range files {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			events, failures, err := s.ReadFile(path)
			results[i] = fileResult{events: events, failures: failures, err: err}
		}(i, path)
	}
	wg.Wait()

	var all []model.Event
	totalFailures := 0
	filesRead := 0
	for i, res := range results {
		if res.err != nil {
			if singleFile {
				return nil, 0, 0, res.err
			}
			slog.Warn("skipping unreadable log file", "path", files[i], "error", res.err)
			continue
		}
		all = append(all, res.events...)
		totalFailures += res.failures
		filesRead++
	}
	return all, totalFailures, filesRead, nil
}
