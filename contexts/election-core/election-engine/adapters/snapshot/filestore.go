package snapshot

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"hustings/contexts/election-core/election-engine/ports"

	"github.com/vmihailenco/msgpack/v5"
)

// FileStore persists full-model snapshots to a single msgpack-encoded file.
// The handle stays open for the process lifetime and is rewound before every
// write, so the file always holds exactly one snapshot.
type FileStore struct {
	mu   sync.Mutex
	file *os.File
}

func NewFileStore(path string) (*FileStore, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_SYNC, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileStore{file: file}, nil
}

func (f *FileStore) WriteSnapshot(_ context.Context, snapshot ports.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.rewind(); err != nil {
		return err
	}
	raw, err := msgpack.Marshal(snapshot)
	if err != nil {
		return err
	}
	_, err = f.file.Write(raw)
	return err
}

// ReadSnapshot reports found=false for a fresh or empty file.
func (f *FileStore) ReadSnapshot(_ context.Context) (ports.Snapshot, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.file.Seek(0, io.SeekStart); err != nil {
		return ports.Snapshot{}, false, err
	}
	raw, err := io.ReadAll(f.file)
	if err != nil {
		return ports.Snapshot{}, false, err
	}
	if len(raw) == 0 {
		return ports.Snapshot{}, false, nil
	}
	var snapshot ports.Snapshot
	if err := msgpack.Unmarshal(raw, &snapshot); err != nil {
		if errors.Is(err, io.EOF) {
			return ports.Snapshot{}, false, nil
		}
		return ports.Snapshot{}, false, err
	}
	return snapshot, true, nil
}

func (f *FileStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Close()
}

func (f *FileStore) rewind() error {
	if err := f.file.Truncate(0); err != nil {
		return err
	}
	if _, err := f.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	return nil
}
