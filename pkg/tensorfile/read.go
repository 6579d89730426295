package tensorfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Read decodes every record written by Write.
func Read(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)

	line, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read record count: %w", eofToUnexpected(err))
	}
	count, err := strconv.Atoi(strings.TrimSuffix(line, "\n"))
	if err != nil || count < 0 {
		return nil, fmt.Errorf("%w: invalid record count %q", ErrBadHeader, strings.TrimSpace(line))
	}

	// count is untrusted until the records are actually read
	records := make([]Record, 0, min(count, 64))
	for i := 0; i < count; i++ {
		rec, err := readRecord(br)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func readRecord(br *bufio.Reader) (Record, error) {
	name, err := readToken(br)
	if err != nil {
		return Record{}, err
	}
	dt, err := readInt(br, "dtype")
	if err != nil {
		return Record{}, err
	}
	rank, err := readInt(br, "rank")
	if err != nil {
		return Record{}, err
	}
	if rank < 0 {
		return Record{}, fmt.Errorf("%w: negative rank %d", ErrBadHeader, rank)
	}

	rec := Record{Name: name, DType: DType(dt), Shape: make([]int, rank)}
	if !rec.DType.Valid() {
		return Record{}, fmt.Errorf("tensor %q: %w %d", name, ErrUnknownDType, dt)
	}
	size := int64(rec.DType.Size())
	for i := range rec.Shape {
		d, err := readInt(br, "dimension")
		if err != nil {
			return Record{}, err
		}
		if d < 0 {
			return Record{}, fmt.Errorf("%w: negative dimension %d", ErrBadHeader, d)
		}
		if d > 0 && size > maxRecordBytes/int64(d) {
			return Record{}, fmt.Errorf("tensor %q: %w: more than %d bytes", name, ErrTooLarge, int64(maxRecordBytes))
		}
		rec.Shape[i] = d
		size *= int64(d)
	}

	rec.Data = make([]byte, size)
	if _, err := io.ReadFull(br, rec.Data); err != nil {
		return Record{}, fmt.Errorf("tensor %q: %w", name, ErrShortData)
	}
	end, err := br.ReadByte()
	if err != nil {
		return Record{}, fmt.Errorf("tensor %q: %w", name, ErrShortData)
	}
	if end != '\n' {
		return Record{}, fmt.Errorf("tensor %q: %w: expected newline after data, got %q", name, ErrBadHeader, end)
	}
	return rec, nil
}

func readToken(br *bufio.Reader) (string, error) {
	tok, err := br.ReadString(' ')
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBadHeader, eofToUnexpected(err))
	}
	tok = tok[:len(tok)-1]
	if tok == "" || strings.ContainsAny(tok, "\n\r\t") {
		return "", fmt.Errorf("%w: bad token %q", ErrBadHeader, tok)
	}
	return tok, nil
}

func readInt(br *bufio.Reader, what string) (int, error) {
	tok, err := readToken(br)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrBadHeader, what, tok)
	}
	return v, nil
}

func eofToUnexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
