package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/longhornadam/QuizForge-sub000/internal/qti"
)

func testArtifacts() *qti.Artifacts {
	return &qti.Artifacts{
		Manifest:   "<?xml version=\"1.0\"?>\n<manifest/>\n",
		Assessment: "<?xml version=\"1.0\"?>\n<questestinterop/>\n",
		Meta:       "<?xml version=\"1.0\"?>\n<quiz/>\n",
		Token:      "abc123",
	}
}

func TestZipLayout(t *testing.T) {
	data, err := Zip(testArtifacts())
	if err != nil {
		t.Fatalf("Zip: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("reading produced zip: %v", err)
	}

	want := []string{
		"imsmanifest.xml",
		"abc123/abc123.xml",
		"abc123/assessment_meta.xml",
	}
	if len(zr.File) != len(want) {
		t.Fatalf("zip holds %d entries, want %d", len(zr.File), len(want))
	}
	for i, f := range zr.File {
		if f.Name != want[i] {
			t.Errorf("entry %d = %q, want %q", i, f.Name, want[i])
		}
	}

	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatalf("open manifest entry: %v", err)
	}
	defer rc.Close()
	content, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read manifest entry: %v", err)
	}
	if string(content) != testArtifacts().Manifest {
		t.Errorf("manifest content = %q", content)
	}
}

func TestZipNormalizesLineEndings(t *testing.T) {
	arts := testArtifacts()
	arts.Meta = "<?xml version=\"1.0\"?>\r\n<quiz/>\r\n"
	data, err := Zip(arts)
	if err != nil {
		t.Fatalf("Zip: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("reading produced zip: %v", err)
	}
	rc, err := zr.File[2].Open()
	if err != nil {
		t.Fatalf("open meta entry: %v", err)
	}
	defer rc.Close()
	content, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read meta entry: %v", err)
	}
	if bytes.Contains(content, []byte("\r")) {
		t.Errorf("zip entry still contains carriage returns: %q", content)
	}
}

func TestBundleID(t *testing.T) {
	tests := []struct{ in, want string }{
		{"review.bundle.tar.xz", "review"},
		{"review.tar.xz", "review"},
		{"review.tar", "review"},
		{"review", "review"},
	}
	for _, tt := range tests {
		if got := BundleID(tt.in); got != tt.want {
			t.Errorf("BundleID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBundleRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unit4.bundle.tar.xz")
	b := &Bundle{
		Artifacts: testArtifacts(),
		Outline:   "Sample - Answer Key\n",
		Log:       "QuizForge Processing Log\n",
	}
	if err := WriteBundle(b, path); err != nil {
		t.Fatalf("WriteBundle: %v", err)
	}

	var names []string
	err := IterateBundle(path, func(header *tar.Header, _ io.Reader) (bool, error) {
		names = append(names, header.Name)
		return false, nil
	})
	if err != nil {
		t.Fatalf("IterateBundle: %v", err)
	}
	want := []string{
		"unit4/imsmanifest.xml",
		"unit4/abc123/abc123.xml",
		"unit4/abc123/assessment_meta.xml",
		"unit4/outline.txt",
		"unit4/processing.log",
	}
	if len(names) != len(want) {
		t.Fatalf("bundle holds %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, names[i], want[i])
		}
	}

	outline, err := ReadBundleFile(path, "outline.txt")
	if err != nil {
		t.Fatalf("ReadBundleFile: %v", err)
	}
	if string(outline) != b.Outline {
		t.Errorf("outline round trip = %q", outline)
	}

	if _, err := ReadBundleFile(path, "missing.txt"); err == nil {
		t.Error("reading a missing bundle file did not fail")
	}
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("no space left on device") }

func TestWriteBundleSurfacesFlushErrors(t *testing.T) {
	// The xz and tar layers buffer until Close, so a dead sink must still
	// fail the write instead of reporting a truncated bundle as success.
	b := &Bundle{Artifacts: testArtifacts(), Outline: "key\n", Log: "log\n"}
	if err := writeBundleTo(b, "unit4", brokenWriter{}); err == nil {
		t.Error("a failing writer did not surface an error")
	}
}
