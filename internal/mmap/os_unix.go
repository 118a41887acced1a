//go:build unix

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

func mapFile(f *os.File, size int) ([]byte, func([]byte) error, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	return data, unix.Munmap, nil
}

func advise(data []byte, hint Hint) error {
	advice := unix.MADV_NORMAL
	switch hint {
	case HintSequential:
		advice = unix.MADV_SEQUENTIAL
	case HintRandom:
		advice = unix.MADV_RANDOM
	}
	return unix.Madvise(data, advice)
}
