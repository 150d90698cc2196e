package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteURLFile drops a .url file with the given content into dir and
// returns its path. The name should not carry an extension.
func WriteURLFile(t testing.TB, dir, name, content string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name+".url")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
