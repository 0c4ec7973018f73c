package source

import (
	"os"

	"github.com/avcore/goplay/internal/errors"
)

type fileContainer struct {
	*os.File
}

func openFile(path string) (Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(errors.KindInput, "source.open_file", err)
	}
	return fileContainer{f}, nil
}

func (fileContainer) Seekable() bool { return true }
func (fileContainer) Realtime() bool { return false }
