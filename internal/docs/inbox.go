package docs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// Registrar is the store surface the inbox writes through.
type Registrar interface {
	RegisterDocument(filename, sha string) (bool, error)
}

// Inbox registers files dropped into a directory. Identity is the
// content hash, so moving or renaming a file does not re-register it.
type Inbox struct {
	Dir   string
	Store Registrar
}

func NewInbox(dir string, st Registrar) *Inbox {
	return &Inbox{Dir: dir, Store: st}
}

// Scan walks the inbox (top level only) and registers new files.
// Returns the number of newly registered documents.
func (in *Inbox) Scan() (int, error) {
	if err := os.MkdirAll(in.Dir, 0o755); err != nil {
		return 0, fmt.Errorf("create inbox dir: %w", err)
	}

	entries, err := os.ReadDir(in.Dir)
	if err != nil {
		return 0, fmt.Errorf("read inbox: %w", err)
	}

	registered := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(in.Dir, entry.Name())
		sha, err := sha256File(path)
		if err != nil {
			log.Printf("[WARN] inbox: hash %s: %v", entry.Name(), err)
			continue
		}
		fresh, err := in.Store.RegisterDocument(entry.Name(), sha)
		if err != nil {
			log.Printf("[WARN] inbox: register %s: %v", entry.Name(), err)
			continue
		}
		if fresh {
			registered++
		}
	}
	return registered, nil
}

func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
