package fixture

import (
	"bytes"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/bert-trt-helpers/pkg/tensorfile"
)

const (
	TestInputFileName = "test_inputs.weights_int32"
	// TestOutputFileName is produced by a separate reference run, not by this package.
	TestOutputFileName = "test_outputs.weights"

	DefaultSeed = 12345
	VocabSize   = 30522
	NumSegments = 2
)

// Tensor feed names in the order they are written.
var feedNames = []string{"input_ids:0", "input_mask:0", "segment_ids:0"}

type Options struct {
	OutputDir string
	SeqLen    int
	BatchSize int
	Seed      int64
	// IndexSuffix appends "_0" to each record name, the form TensorRT
	// weight loaders look up.
	IndexSuffix bool
}

func (o Options) validate() error {
	if o.SeqLen <= 0 {
		return fmt.Errorf("sequence length must be positive, got %d", o.SeqLen)
	}
	if o.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", o.BatchSize)
	}
	return nil
}

// Generate builds the input_ids, input_mask and segment_ids tensors of shape
// (BatchSize, SeqLen). The result depends only on Seed, SeqLen and BatchSize.
func Generate(opts Options) ([]tensorfile.Record, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(uint64(opts.Seed), 0))
	n := opts.BatchSize * opts.SeqLen

	wordIDs := make([]int32, n)
	for i := range wordIDs {
		wordIDs[i] = rng.Int32N(VocabSize)
	}
	inputMask := make([]int32, n)
	for i := range inputMask {
		inputMask[i] = 1
	}
	segmentIDs := make([]int32, n)
	for i := range segmentIDs {
		segmentIDs[i] = rng.Int32N(NumSegments)
	}

	shape := []int{opts.BatchSize, opts.SeqLen}
	values := [][]int32{wordIDs, inputMask, segmentIDs}
	records := make([]tensorfile.Record, len(feedNames))
	for i, feed := range feedNames {
		name := tensorfile.StripPortSuffix(feed)
		if opts.IndexSuffix {
			name += "_0"
		}
		rec, err := tensorfile.NewInt32Record(name, shape, values[i])
		if err != nil {
			return nil, err
		}
		records[i] = rec
	}
	return records, nil
}

// WriteFile generates the fixture and writes it to OutputDir/TestInputFileName,
// creating the directory if needed and replacing any existing file.
func WriteFile(opts Options) (string, error) {
	records, err := Generate(opts)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(opts.OutputDir); os.IsNotExist(err) {
		log.Printf("Output path does not exist. Creating.")
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	var buf bytes.Buffer
	if err := tensorfile.Write(&buf, records); err != nil {
		return "", err
	}

	path := filepath.Join(opts.OutputDir, TestInputFileName)
	if err := atomic.WriteFile(path, &buf); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	// atomic.WriteFile keeps the temp file's 0600 mode
	if err := os.Chmod(path, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
