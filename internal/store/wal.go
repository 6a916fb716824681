package store

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
)

// WAL is the append-only mutation log.
//
// Record format: one JSON array `[["seg",...], value]` per line. Every append
// is written with a single write call and fsynced before returning; the store
// never batches.
type WAL struct {
	file *os.File
	path string
	size int64
}

// Record is a decoded WAL line together with its 1-based line number.
type Record struct {
	Line int
	Entry
}

// ReadInfo describes what ReadRecords skipped.
type ReadInfo struct {
	// TornLine is the line number of a discarded trailing record, or 0.
	TornLine int

	// TornBytes is the size of the discarded trailing record.
	TornBytes int
}

// OpenWAL opens or creates a WAL file for appending.
func OpenWAL(path string) (*WAL, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, ioError("open write-ahead log", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, ioError("stat write-ahead log", path, err)
	}

	return &WAL{
		file: file,
		path: path,
		size: info.Size(),
	}, nil
}

// Path returns the WAL file path.
func (w *WAL) Path() string {
	return w.path
}

// Size returns the current WAL file size in bytes.
func (w *WAL) Size() int64 {
	return w.size
}

// Append writes one encoded record and a newline, then fsyncs.
func (w *WAL) Append(record []byte) error {
	if w.file == nil {
		return ioError("append to write-ahead log", w.path, ErrClosed)
	}
	line := make([]byte, 0, len(record)+1)
	line = append(line, record...)
	line = append(line, '\n')

	n, err := w.file.Write(line)
	w.size += int64(n)
	if err != nil {
		return ioError("append to write-ahead log", w.path, err)
	}
	if err := w.file.Sync(); err != nil {
		return ioError("sync write-ahead log", w.path, err)
	}
	return nil
}

// ReadRecords decodes every record in file order. Blank lines are skipped.
//
// A malformed record is a parse error. With discardTornTail set, a malformed
// final line that has no terminating newline is dropped instead and reported
// in ReadInfo; a crash in the middle of an append leaves exactly that shape.
// Malformed records anywhere else, or newline-terminated ones, are still errors.
func (w *WAL) ReadRecords(discardTornTail bool) ([]Record, ReadInfo, error) {
	var info ReadInfo
	if w.file == nil {
		return nil, info, ioError("read write-ahead log", w.path, ErrClosed)
	}

	lines, terminated, err := readLines(io.NewSectionReader(w.file, 0, w.size))
	if err != nil {
		return nil, info, ioError("read write-ahead log", w.path, err)
	}

	records := make([]Record, 0, len(lines))
	for i, raw := range lines {
		lineNo := i + 1
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 {
			continue
		}

		entry, err := DecodeEntry(trimmed)
		if err != nil {
			if discardTornTail && i == len(lines)-1 && !terminated {
				info.TornLine = lineNo
				info.TornBytes = len(raw)
				break
			}
			return nil, info, parseError("malformed write-ahead log record", w.path, lineNo, err)
		}
		records = append(records, Record{Line: lineNo, Entry: entry})
	}
	return records, info, nil
}

// readLines splits r on '\n'. A final line without a newline is kept, and
// terminated reports whether the input ended with a newline.
func readLines(r io.Reader) (lines [][]byte, terminated bool, err error) {
	br := bufio.NewReader(r)
	terminated = true
	for {
		line, readErr := br.ReadBytes('\n')
		if len(line) > 0 {
			terminated = line[len(line)-1] == '\n'
			lines = append(lines, bytes.TrimSuffix(line, []byte{'\n'}))
		}
		if errors.Is(readErr, io.EOF) {
			return lines, terminated, nil
		}
		if readErr != nil {
			return nil, false, readErr
		}
	}
}

// Truncate empties the WAL and fsyncs.
func (w *WAL) Truncate() error {
	if w.file == nil {
		return ioError("truncate write-ahead log", w.path, ErrClosed)
	}
	if err := w.file.Truncate(0); err != nil {
		return ioError("truncate write-ahead log", w.path, err)
	}
	w.size = 0
	if err := w.file.Sync(); err != nil {
		return ioError("sync write-ahead log", w.path, err)
	}
	return nil
}

// Close releases the file handle. Further appends fail with ErrClosed.
func (w *WAL) Close() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	if err != nil {
		return ioError("close write-ahead log", w.path, err)
	}
	return nil
}
