// Package archive packages generated artifacts: the Canvas-importable zip
// container and an optional tar.xz review bundle.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"

	"github.com/longhornadam/QuizForge-sub000/internal/qti"
)

// Zip builds the import container. The layout is fixed: imsmanifest.xml at
// the root, then the assessment body and metadata under the token folder.
// Nothing else may appear; Canvas imports the whole zip.
func Zip(arts *qti.Artifacts) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	entries := []struct{ name, content string }{
		{"imsmanifest.xml", arts.Manifest},
		{arts.Token + "/" + arts.Token + ".xml", arts.Assessment},
		{arts.Token + "/assessment_meta.xml", arts.Meta},
	}
	for _, entry := range entries {
		w, err := zw.Create(entry.name)
		if err != nil {
			return nil, fmt.Errorf("create zip entry %s: %w", entry.name, err)
		}
		if _, err := w.Write([]byte(normalizeLF(entry.content))); err != nil {
			return nil, fmt.Errorf("write zip entry %s: %w", entry.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize zip: %w", err)
	}
	return buf.Bytes(), nil
}

// normalizeLF forces Unix line endings; the importer chokes on CRLF inside
// XML prologs.
func normalizeLF(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
