package payload

import "github.com/bert-trt-helpers/pkg/config"

// Example tokenized sentence sent by the qps tool when the config carries none.
var (
	ExampleInputIDs = []int32{
		101, 6821, 3221, 671, 702, 3844, 6407, 4638, 1368, 2094, 102, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
	ExampleInputMask = []int32{
		1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
	ExampleSegmentIDs = make([]int32, 40)
)

type Inputs struct {
	InputIDs   [][]int32 `json:"input_ids"`
	InputMask  [][]int32 `json:"input_mask"`
	SegmentIDs [][]int32 `json:"segment_ids"`
	Training   bool      `json:"training"`
}

// PredictRequest is the TensorFlow-Serving style "inputs" body.
type PredictRequest struct {
	SignatureName string `json:"signature_name"`
	Inputs        Inputs `json:"inputs"`
}

// Pad returns a copy of seq extended with zeros to length n. Sequences already
// n or longer are returned unchanged, never truncated.
func Pad(seq []int32, n int) []int32 {
	out := make([]int32, len(seq), max(len(seq), n))
	copy(out, seq)
	for len(out) < n {
		out = append(out, 0)
	}
	return out
}

// Build pads the configured example sequences to MaxSeqLen and repeats them
// BatchSize times.
func Build(cfg config.Config) PredictRequest {
	ids, mask, segs := cfg.InputIDs, cfg.InputMask, cfg.SegmentIDs
	if len(ids) == 0 {
		ids, mask, segs = ExampleInputIDs, ExampleInputMask, ExampleSegmentIDs
	}
	ids = Pad(ids, cfg.MaxSeqLen)
	mask = Pad(mask, cfg.MaxSeqLen)
	segs = Pad(segs, cfg.MaxSeqLen)

	req := PredictRequest{
		SignatureName: cfg.SignatureName,
		Inputs: Inputs{
			InputIDs:   make([][]int32, cfg.BatchSize),
			InputMask:  make([][]int32, cfg.BatchSize),
			SegmentIDs: make([][]int32, cfg.BatchSize),
		},
	}
	for i := 0; i < cfg.BatchSize; i++ {
		req.Inputs.InputIDs[i] = ids
		req.Inputs.InputMask[i] = mask
		req.Inputs.SegmentIDs[i] = segs
	}
	return req
}
