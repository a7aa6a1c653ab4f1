package store

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Lock acquisition parameters. The state document is small and mutations
// are quick, so a short bounded retry is enough; a lock still held after
// the timeout is an error, never a silent proceed.
const (
	lockRetryInterval = 50 * time.Millisecond
	lockTimeout       = 5 * time.Second
)

// lockFile is an advisory lock around the project-state document. It is
// taken by exclusively creating <path>.lock containing the holder's pid.
type lockFile struct {
	path string
}

// acquireLock creates the lock file, retrying until lockTimeout.
func acquireLock(statePath string) (*lockFile, error) {
	path := statePath + ".lock"
	deadline := time.Now().Add(lockTimeout)

	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			fmt.Fprintln(f, strconv.Itoa(os.Getpid()))
			f.Close()
			return &lockFile{path: path}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("creating lock file %s: %w", path, err)
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("state file locked by another process (remove %s if stale)", path)
		}
		time.Sleep(lockRetryInterval)
	}
}

// release removes the lock file.
func (l *lockFile) release() {
	os.Remove(l.path)
}
