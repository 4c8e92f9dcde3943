package job

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mnishina/avif-converter/config"
	"github.com/mnishina/avif-converter/encoder"
	"github.com/mnishina/avif-converter/models"
)

// stubEncoders swaps the registry for the test's fakes and restores it after.
func stubEncoders(t *testing.T, fakes map[string]encoder.EncodeFunc) {
	t.Helper()
	saved := encoder.Registry
	encoder.Registry = fakes
	t.Cleanup(func() { encoder.Registry = saved })
}

// fakeWrite returns an encoder that writes n bytes to the output path.
func fakeWrite(n int) encoder.EncodeFunc {
	return func(ctx context.Context, in, out string, o encoder.EncodeOptions) error {
		return os.WriteFile(out, make([]byte, n), 0o644)
	}
}

func fakeFail(msg string) encoder.EncodeFunc {
	return func(ctx context.Context, in, out string, o encoder.EncodeOptions) error {
		return fmt.Errorf("%s", msg)
	}
}

func testJob(t *testing.T, rel string, content []byte) models.Job {
	t.Helper()
	root := t.TempDir()
	in := filepath.Join(root, "src")
	out := filepath.Join(root, "dst")
	path := filepath.Join(in, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return models.Job{
		InputPath:  path,
		InputRoot:  in,
		OutputRoot: out,
		Config:     config.Default(),
	}
}

func TestExecuteMirrorsDirectoryStructure(t *testing.T) {
	stubEncoders(t, map[string]encoder.EncodeFunc{
		"avif": fakeWrite(30),
		"copy": fakeWrite(70),
	})
	j := testJob(t, "gallery/2024/pic.bin", []byte("not an image, detection says other"))

	res := Execute(context.Background(), j)
	if res.Failed() {
		t.Fatalf("Expected success, got %s", res.Err)
	}

	wantAvif := filepath.Join(j.OutputRoot, "gallery", "2024", "pic.avif")
	if res.AvifPath != wantAvif {
		t.Errorf("Expected avif at %s, got %s", wantAvif, res.AvifPath)
	}
	wantFallback := filepath.Join(j.OutputRoot, "gallery", "2024", "pic.bin")
	if res.FallbackPath != wantFallback {
		t.Errorf("Expected fallback at %s, got %s", wantFallback, res.FallbackPath)
	}
	for _, p := range []string{res.AvifPath, res.FallbackPath} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("Expected artifact on disk at %s: %v", p, err)
		}
	}
	if res.AvifSize != 30 || res.FallbackSize != 70 {
		t.Errorf("Expected measured sizes 30 and 70, got %d and %d", res.AvifSize, res.FallbackSize)
	}
	if res.OriginalSize != int64(len("not an image, detection says other")) {
		t.Errorf("Expected original size from disk, got %d", res.OriginalSize)
	}
	if res.Format != models.FormatOther {
		t.Errorf("Expected format other, got %s", res.Format)
	}
	if res.Duration < 0 {
		t.Errorf("Expected non-negative duration, got %v", res.Duration)
	}
}

func TestExecutePicksFallbackByDetectedFormat(t *testing.T) {
	var fallbackUsed string
	spy := func(name string) encoder.EncodeFunc {
		return func(ctx context.Context, in, out string, o encoder.EncodeOptions) error {
			fallbackUsed = name
			return os.WriteFile(out, []byte("x"), 0o644)
		}
	}
	stubEncoders(t, map[string]encoder.EncodeFunc{
		"avif": fakeWrite(10),
		"png":  spy("png"),
		"copy": spy("copy"),
	})

	// png bytes behind a lying extension
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	j := testJob(t, "shot.jpg", buf.Bytes())

	res := Execute(context.Background(), j)
	if res.Failed() {
		t.Fatalf("Expected success, got %s", res.Err)
	}
	if res.Format != models.FormatPNG {
		t.Errorf("Expected detected png, got %s", res.Format)
	}
	if fallbackUsed != "png" {
		t.Errorf("Expected the png fallback encoder, got %q", fallbackUsed)
	}
	// fallback keeps the original name, extension and all
	if filepath.Base(res.FallbackPath) != "shot.jpg" {
		t.Errorf("Expected fallback named shot.jpg, got %s", res.FallbackPath)
	}
	if filepath.Base(res.AvifPath) != "shot.avif" {
		t.Errorf("Expected avif named shot.avif, got %s", res.AvifPath)
	}
}

func TestExecuteSharedOutputDirIsIdempotent(t *testing.T) {
	stubEncoders(t, map[string]encoder.EncodeFunc{
		"avif": fakeWrite(10),
		"copy": fakeWrite(10),
	})
	first := testJob(t, "gallery/a.bin", []byte("a"))

	// second file in the same directory, converted after the first already
	// created gallery/ under the output root
	sibling := filepath.Join(filepath.Dir(first.InputPath), "b.bin")
	if err := os.WriteFile(sibling, []byte("b"), 0o644); err != nil {
		t.Fatalf("write sibling: %v", err)
	}
	second := first
	second.InputPath = sibling

	if res := Execute(context.Background(), first); res.Failed() {
		t.Fatalf("Expected first job to succeed, got %s", res.Err)
	}
	if res := Execute(context.Background(), second); res.Failed() {
		t.Fatalf("Expected sibling job to succeed in the existing dir, got %s", res.Err)
	}
	if res := Execute(context.Background(), first); res.Failed() {
		t.Fatalf("Expected rerun to overwrite in place, got %s", res.Err)
	}
}

func TestExecuteAvifFailureIsCaptured(t *testing.T) {
	fallbackCalled := false
	stubEncoders(t, map[string]encoder.EncodeFunc{
		"avif": fakeFail("avifenc exploded"),
		"copy": func(ctx context.Context, in, out string, o encoder.EncodeOptions) error {
			fallbackCalled = true
			return nil
		},
	})
	j := testJob(t, "pic.bin", []byte("data"))

	res := Execute(context.Background(), j)
	if !res.Failed() {
		t.Fatal("Expected failure result")
	}
	if !strings.Contains(res.Err, "avif encode") || !strings.Contains(res.Err, "avifenc exploded") {
		t.Errorf("Expected wrapped avif error, got %q", res.Err)
	}
	if fallbackCalled {
		t.Error("Expected no fallback attempt after the avif step failed")
	}
	if res.AvifSize != 0 || res.FallbackSize != 0 || res.OriginalSize != 0 {
		t.Errorf("Expected a bare failure result, got %+v", res)
	}
}

func TestExecuteFallbackFailureKeepsAvifArtifact(t *testing.T) {
	stubEncoders(t, map[string]encoder.EncodeFunc{
		"avif": fakeWrite(20),
		"copy": fakeFail("disk full"),
	})
	j := testJob(t, "pic.bin", []byte("data"))

	res := Execute(context.Background(), j)
	if !res.Failed() {
		t.Fatal("Expected failure result")
	}
	if !strings.Contains(res.Err, "fallback encode") {
		t.Errorf("Expected fallback error, got %q", res.Err)
	}
	// the avif artifact already landed; the job still counts as failed
	if _, err := os.Stat(filepath.Join(j.OutputRoot, "pic.avif")); err != nil {
		t.Errorf("Expected avif artifact to remain on disk: %v", err)
	}
	if res.AvifSize != 0 {
		t.Errorf("Expected failure result without sizes, got %d", res.AvifSize)
	}
}

func TestExecuteMissingEncoder(t *testing.T) {
	stubEncoders(t, map[string]encoder.EncodeFunc{}) // nothing registered
	j := testJob(t, "pic.bin", []byte("data"))

	res := Execute(context.Background(), j)
	if !res.Failed() {
		t.Fatal("Expected failure result")
	}
	if !strings.Contains(res.Err, "avif encoder unavailable") {
		t.Errorf("Expected unavailable-encoder error, got %q", res.Err)
	}
}

func TestExecuteMissingInput(t *testing.T) {
	stubEncoders(t, map[string]encoder.EncodeFunc{"avif": fakeWrite(1), "copy": fakeWrite(1)})
	j := testJob(t, "pic.bin", []byte("data"))
	if err := os.Remove(j.InputPath); err != nil {
		t.Fatalf("remove input: %v", err)
	}

	res := Execute(context.Background(), j)
	if !res.Failed() {
		t.Error("Expected failure for vanished input")
	}
}

func TestExecuteInputOutsideRoot(t *testing.T) {
	stubEncoders(t, map[string]encoder.EncodeFunc{"avif": fakeWrite(1), "copy": fakeWrite(1)})
	j := testJob(t, "pic.bin", []byte("data"))
	j.InputRoot = filepath.Join(j.InputRoot, "elsewhere")

	res := Execute(context.Background(), j)
	if !res.Failed() {
		t.Fatal("Expected failure for input outside the root")
	}
	if !strings.Contains(res.Err, "outside root") {
		t.Errorf("Expected outside-root error, got %q", res.Err)
	}
}

func TestExecuteUploadFailureFailsJob(t *testing.T) {
	stubEncoders(t, map[string]encoder.EncodeFunc{
		"avif": fakeWrite(5),
		"copy": fakeWrite(5),
	})
	j := testJob(t, "pic.bin", []byte("data"))
	j.Config.Uploads = []config.UploadTarget{{Type: "carrier-pigeon"}}

	res := Execute(context.Background(), j)
	if !res.Failed() {
		t.Fatal("Expected upload failure to fail the job")
	}
	if !strings.Contains(res.Err, "upload") {
		t.Errorf("Expected upload error, got %q", res.Err)
	}
}
