package document

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// WriteTSV writes one "<id>\t<text>\n" line per chunk, in order.
func WriteTSV(w io.Writer, chunks []Chunk) error {
	bw := bufio.NewWriter(w)
	for _, c := range chunks {
		bw.WriteString(strconv.FormatInt(c.ID, 10))
		bw.WriteByte('\t')
		bw.WriteString(c.Text)
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("document: write chunk %d: %w", c.ID, err)
		}
	}
	return bw.Flush()
}

// WriteTSVFile writes chunks to path through a temp file in the same
// directory, so path only ever holds a complete output.
func WriteTSVFile(path string, chunks []Chunk) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("document: create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if err := WriteTSV(tmp, chunks); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("document: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("document: finalize %s: %w", path, err)
	}
	return nil
}

// ReadTSV parses lines produced by WriteTSV. Only ID and Text are restored.
func ReadTSV(r io.Reader) ([]Chunk, error) {
	var chunks []Chunk
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Text()
		if raw == "" {
			continue
		}
		idStr, text, ok := strings.Cut(raw, "\t")
		if !ok {
			return nil, fmt.Errorf("document: line %d: missing tab separator", line)
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("document: line %d: invalid id %q: %w", line, idStr, err)
		}
		chunks = append(chunks, Chunk{ID: id, Text: text})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("document: read tsv: %w", err)
	}
	return chunks, nil
}
