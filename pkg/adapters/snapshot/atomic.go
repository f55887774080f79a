package snapshot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// TempFilePrefix is the prefix of the temporary files used for atomic writes.
const TempFilePrefix = "jobboard-tmp-"

// replaceFile streams the output of write into a sibling temp file and
// renames it over filename once it is complete and synced. Readers and
// the follower only ever see a whole file.
func replaceFile(filename string, perm os.FileMode, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(filename), TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("snapshot: temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			err = errors.Join(err, tmp.Close(), os.Remove(tmp.Name()))
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("snapshot: write: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("snapshot: chmod: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("snapshot: sync: %w", err)
	}

	committed = true
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("snapshot: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("snapshot: rename into %s: %w", filename, err)
	}
	return nil
}
