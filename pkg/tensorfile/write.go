package tensorfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// Write encodes records as
//
//	<count>\n
//	<name> <dtype> <rank> <dim_0> ... <dim_n> <raw bytes>\n
//
// for each record in order. All records are validated before anything is written.
func Write(w io.Writer, records []Record) error {
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d\n", len(records)); err != nil {
		return fmt.Errorf("failed to write record count: %w", err)
	}
	for _, r := range records {
		if err := writeRecord(bw, r); err != nil {
			return fmt.Errorf("failed to write tensor %q: %w", r.Name, err)
		}
	}
	return bw.Flush()
}

func writeRecord(w *bufio.Writer, r Record) error {
	if _, err := w.WriteString(header(r)); err != nil {
		return err
	}
	if _, err := w.Write(r.Data); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

func header(r Record) string {
	buf := make([]byte, 0, len(r.Name)+8+len(r.Shape)*6)
	buf = append(buf, r.Name...)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(r.DType), 10)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(r.Rank()), 10)
	for _, d := range r.Shape {
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, int64(d), 10)
	}
	buf = append(buf, ' ')
	return string(buf)
}
