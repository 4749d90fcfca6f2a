package docs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type fakeRegistrar struct {
	seen map[string]bool
	fail bool
}

func (r *fakeRegistrar) RegisterDocument(filename, sha string) (bool, error) {
	if r.fail {
		return false, errors.New("store closed")
	}
	if r.seen == nil {
		r.seen = map[string]bool{}
	}
	if r.seen[sha] {
		return false, nil
	}
	r.seen[sha] = true
	return true, nil
}

func TestScanRegistersNewFiles(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"report.md": "quarterly notes",
		"dump.txt":  "raw export",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	reg := &fakeRegistrar{}
	in := NewInbox(dir, reg)

	n, err := in.Scan()
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if n != 2 {
		t.Errorf("registered %d, want 2", n)
	}

	// Second scan finds nothing new.
	n, err = in.Scan()
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if n != 0 {
		t.Errorf("rescan registered %d, want 0", n)
	}
}

func TestScanRenameDoesNotReregister(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "before.md")
	if err := os.WriteFile(old, []byte("same content"), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := &fakeRegistrar{}
	in := NewInbox(dir, reg)
	if _, err := in.Scan(); err != nil {
		t.Fatal(err)
	}

	if err := os.Rename(old, filepath.Join(dir, "after.md")); err != nil {
		t.Fatal(err)
	}
	n, err := in.Scan()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("rename registered %d, want 0", n)
	}
}

func TestScanCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbox")
	in := NewInbox(dir, &fakeRegistrar{})

	n, err := in.Scan()
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if n != 0 {
		t.Errorf("registered %d, want 0", n)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("inbox dir not created: %v", err)
	}
}

func TestScanContinuesPastRegisterErrors(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.md"), []byte("aaa"), 0o644); err != nil {
		t.Fatal(err)
	}

	in := NewInbox(dir, &fakeRegistrar{fail: true})
	n, err := in.Scan()
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if n != 0 {
		t.Errorf("registered %d, want 0", n)
	}
}
