package replay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	"github.com/bert-trt-helpers/pkg/client"
	"github.com/bert-trt-helpers/pkg/sink"
)

type Poster interface {
	PostRaw(ctx context.Context, body []byte) (*client.Response, error)
}

type Replayer struct {
	Poster Poster
	Sink   sink.Sink
	// Suffix is appended to each request path to name its output file.
	Suffix string
	RunID  string
}

// Run posts every request file listed in listPath, one path per line, in
// order. The "outputs" field of each response is written next to the request
// file. The first failure, including a non-2xx answer, aborts the remaining
// lines. It returns the number of
// requests completed.
func (r *Replayer) Run(ctx context.Context, listPath string) (int, error) {
	paths, err := ReadList(listPath)
	if err != nil {
		return 0, err
	}

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := r.replayOne(ctx, i, path); err != nil {
			return i, fmt.Errorf("%s: %w", path, err)
		}
	}
	return len(paths), nil
}

func (r *Replayer) replayOne(ctx context.Context, seq int, path string) error {
	log.Printf("replaying %s", path)

	body, err := LoadRequest(path)
	if err != nil {
		return err
	}

	resp, err := r.Poster.PostRaw(ctx, body)
	sample := sink.Sample{RunID: r.RunID, Source: path, Seq: seq, Err: err}
	if err == nil {
		sample.Latency = resp.Latency
		sample.Status = resp.StatusCode
	}
	if r.Sink != nil {
		if serr := r.Sink.Record(ctx, sample); serr != nil {
			log.Printf("failed to report sample: %v", serr)
		}
	}
	if err != nil {
		return err
	}

	outputs, err := resp.Outputs()
	if err != nil {
		return err
	}
	out := path + r.Suffix
	if err := atomic.WriteFile(out, bytes.NewReader(outputs)); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	// atomic.WriteFile keeps the temp file's 0600 mode
	return os.Chmod(out, 0o644)
}

// ReadList returns the non-empty lines of the list file with their line
// terminators removed.
func ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var paths []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		paths = append(paths, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return paths, nil
}

// LoadRequest reads a request body, accepting comments and trailing commas,
// and returns it as standard JSON. The body must be a JSON object.
func LoadRequest(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(std, &obj); err != nil {
		return nil, fmt.Errorf("request body must be a JSON object: %w", err)
	}
	return std, nil
}
