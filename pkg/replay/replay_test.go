package replay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bert-trt-helpers/pkg/client"
	"github.com/bert-trt-helpers/pkg/sink"
)

// echoServer answers with {"outputs": <inputs.input_ids>}.
func echoServer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Inputs struct {
				InputIDs json.RawMessage `json:"input_ids"`
			} `json:"inputs"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Inputs.InputIDs == nil {
			w.Write([]byte(`{"error": "no inputs"}`))
			return
		}
		w.Write([]byte(`{"outputs": ` + string(req.Inputs.InputIDs) + `}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	writeFile(t, a, `{"signature_name": "serving_default", "inputs": {"input_ids": [[101, 102]]}}`)
	writeFile(t, b, `{
		// second sentence
		"inputs": {"input_ids": [[101, 7, 102]],},
	}`)
	list := filepath.Join(dir, "Test.txt")
	writeFile(t, list, a+"\r\n"+b+"\n\n")

	var out bytes.Buffer
	r := &Replayer{
		Poster: client.New(echoServer(t).URL, 0),
		Sink:   sink.NewStdout(&out),
		Suffix: ".trt.output",
	}
	n, err := r.Run(context.Background(), list)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := os.ReadFile(a + ".trt.output")
	require.NoError(t, err)
	assert.JSONEq(t, `[[101, 102]]`, string(got))

	got, err = os.ReadFile(b + ".trt.output")
	require.NoError(t, err)
	assert.JSONEq(t, `[[101, 7, 102]]`, string(got))

	assert.Equal(t, 2, strings.Count(out.String(), "rest cost :"))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(a + ".trt.output")
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
	}
}

func TestRunAbortsOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	dir := t.TempDir()
	req := filepath.Join(dir, "req.json")
	writeFile(t, req, `{"inputs": {"input_ids": [[1]]}}`)
	list := filepath.Join(dir, "list.txt")
	writeFile(t, list, req+"\n")

	r := &Replayer{Poster: client.New(srv.URL, 0), Suffix: ".out"}
	n, err := r.Run(context.Background(), list)
	var statusErr *client.StatusError
	require.True(t, errors.As(err, &statusErr), "got %v", err)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Zero(t, n)
	assert.NoFileExists(t, req+".out")
}

func TestRunAbortsOnMissingOutputs(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	good := filepath.Join(dir, "good.json")
	writeFile(t, bad, `{"inputs": {}}`)
	writeFile(t, good, `{"inputs": {"input_ids": [[1]]}}`)
	list := filepath.Join(dir, "list.txt")
	writeFile(t, list, bad+"\n"+good+"\n")

	r := &Replayer{Poster: client.New(echoServer(t).URL, 0), Suffix: ".out"}
	n, err := r.Run(context.Background(), list)
	assert.ErrorIs(t, err, client.ErrMissingOutputs)
	assert.Zero(t, n)
	assert.NoFileExists(t, good+".out", "lines after a failure are not processed")
}

func TestRunRejectsNonObjectBody(t *testing.T) {
	dir := t.TempDir()
	req := filepath.Join(dir, "req.json")
	writeFile(t, req, `[1, 2, 3]`)
	list := filepath.Join(dir, "list.txt")
	writeFile(t, list, req+"\n")

	r := &Replayer{Poster: client.New(echoServer(t).URL, 0), Suffix: ".out"}
	_, err := r.Run(context.Background(), list)
	assert.ErrorContains(t, err, "JSON object")
}

func TestRunMissingList(t *testing.T) {
	r := &Replayer{Poster: client.New("http://127.0.0.1:0", 0)}
	_, err := r.Run(context.Background(), filepath.Join(t.TempDir(), "Test.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadList(t *testing.T) {
	list := filepath.Join(t.TempDir(), "Test.txt")
	writeFile(t, list, "one.json\r\n\n  \ntwo.json")

	paths, err := ReadList(list)
	require.NoError(t, err)
	assert.Equal(t, []string{"one.json", "two.json"}, paths)
}
