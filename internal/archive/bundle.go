package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/longhornadam/QuizForge-sub000/internal/qti"
)

// Bundle is the review-bundle content: the three package documents plus
// the human artifacts that never enter the zip.
type Bundle struct {
	Artifacts *qti.Artifacts
	Outline   string // answer-key outline
	Log       string // processing log (fixes and warnings)
}

// WriteBundle writes a tar.xz review bundle to path. Entries live under a
// base directory named after the bundle file so extraction stays tidy.
func WriteBundle(b *Bundle, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create bundle directory: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create bundle file: %w", err)
	}
	if err := writeBundleTo(b, BundleID(filepath.Base(path)), out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func writeBundleTo(b *Bundle, baseDir string, w io.Writer) error {
	xw, err := xz.NewWriter(w)
	if err != nil {
		return fmt.Errorf("xz writer: %w", err)
	}
	tw := tar.NewWriter(xw)

	now := time.Now()
	token := b.Artifacts.Token
	entries := []struct{ name, content string }{
		{"imsmanifest.xml", b.Artifacts.Manifest},
		{token + "/" + token + ".xml", b.Artifacts.Assessment},
		{token + "/assessment_meta.xml", b.Artifacts.Meta},
		{"outline.txt", b.Outline},
		{"processing.log", b.Log},
	}
	for _, entry := range entries {
		data := []byte(entry.content)
		header := &tar.Header{
			Name:    baseDir + "/" + entry.name,
			Mode:    0644,
			Size:    int64(len(data)),
			ModTime: now,
		}
		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("write bundle header %s: %w", entry.name, err)
		}
		if _, err := tw.Write(data); err != nil {
			return fmt.Errorf("write bundle entry %s: %w", entry.name, err)
		}
	}

	// Both writers buffer until Close; a failed flush means a truncated
	// bundle, so the errors must surface.
	if err := tw.Close(); err != nil {
		return fmt.Errorf("finalize bundle tar: %w", err)
	}
	if err := xw.Close(); err != nil {
		return fmt.Errorf("finalize bundle xz: %w", err)
	}
	return nil
}

// BundleID strips the archive extensions from a bundle filename.
func BundleID(filename string) string {
	for _, ext := range []string{".bundle.tar.xz", ".tar.xz", ".tar"} {
		if strings.HasSuffix(filename, ext) {
			return strings.TrimSuffix(filename, ext)
		}
	}
	return filename
}

// Visitor is a callback for iterating bundle entries. Return true to stop.
type Visitor func(header *tar.Header, content io.Reader) (stop bool, err error)

// IterateBundle walks a tar.xz bundle, calling the visitor for each entry.
func IterateBundle(path string, visitor Visitor) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open bundle: %w", err)
	}
	defer f.Close()

	xr, err := xz.NewReader(f)
	if err != nil {
		return fmt.Errorf("xz reader: %w", err)
	}

	tr := tar.NewReader(xr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read bundle header: %w", err)
		}
		stop, err := visitor(header, tr)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

// ReadBundleFile reads one file from a bundle by its name inside the base
// directory.
func ReadBundleFile(path, filename string) ([]byte, error) {
	var content []byte
	err := IterateBundle(path, func(header *tar.Header, r io.Reader) (bool, error) {
		name := header.Name
		if idx := strings.Index(name, "/"); idx >= 0 {
			name = name[idx+1:]
		}
		if name == filename || header.Name == filename {
			var err error
			content, err = io.ReadAll(r)
			return true, err
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, fmt.Errorf("file not found in bundle: %s", filename)
	}
	return content, nil
}
