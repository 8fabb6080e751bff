package index

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var magic = [8]byte{'M', 'R', 'A', 'G', 'V', 'E', 'C', 0}

// header is the fixed-size part of vectors.idx following the magic. The
// model id bytes follow it, then Count*Dim little-endian float32 values.
type header struct {
	Version   uint32
	Dim       uint32
	Count     uint64
	CreatedAt int64
	ModelLen  uint32
}

const headerSize = 8 + 4 + 4 + 8 + 8 + 4

// Write writes the index artifacts of snap into dir.
//
// It is the caller's responsibility to apply an atomic swap strategy; Save
// does that.
func Write(dir string, snap *Snapshot) error {
	if snap == nil || snap.Index == nil {
		return fmt.Errorf("snapshot is empty")
	}
	if snap.Index.Len() != len(snap.Entries) {
		return fmt.Errorf("index has %d rows but %d metadata entries", snap.Index.Len(), len(snap.Entries))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create index dir %s: %w", dir, err)
	}
	if err := writeMetadata(filepath.Join(dir, MetadataFile), snap.Entries); err != nil {
		return err
	}
	return writeVectors(filepath.Join(dir, VectorFile), snap)
}

func writeMetadata(path string, entries []Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create metadata file: %w", err)
	}
	bw := bufio.NewWriter(f)
	for _, e := range entries {
		line, err := json.Marshal(e)
		if err != nil {
			_ = f.Close()
			return err
		}
		if _, err := bw.Write(line); err != nil {
			_ = f.Close()
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeVectors(path string, snap *Snapshot) error {
	created := snap.Manifest.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	h := header{
		Version:   FormatVersion,
		Dim:       uint32(snap.Index.Dim()),
		Count:     uint64(snap.Index.Len()),
		CreatedAt: created.Unix(),
		ModelLen:  uint32(len(snap.Manifest.ModelID)),
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create vectors file: %w", err)
	}
	bw := bufio.NewWriter(f)
	if _, err := bw.Write(magic[:]); err != nil {
		_ = f.Close()
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		_ = f.Close()
		return fmt.Errorf("cannot write vectors header: %w", err)
	}
	if _, err := bw.WriteString(snap.Manifest.ModelID); err != nil {
		_ = f.Close()
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, snap.Index.rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("cannot write vectors: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Save installs snap as the index in dir. The artifacts are written into a
// sibling temp directory and swapped in, under an exclusive lock on
// <dir>.lock.
func Save(dir string, snap *Snapshot, lockTimeout time.Duration) error {
	unlock, err := Lock(dir, lockTimeout)
	if err != nil {
		return err
	}
	defer unlock()

	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", parent, err)
	}
	tmpDir, err := os.MkdirTemp(parent, "."+filepath.Base(dir)+"-*")
	if err != nil {
		return fmt.Errorf("cannot create temp index dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := Write(tmpDir, snap); err != nil {
		return err
	}
	if err := AtomicSwap(tmpDir, dir); err != nil {
		return fmt.Errorf("cannot install index: %w", err)
	}
	return nil
}
