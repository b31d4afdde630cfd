package predict

import (
	"sync"

	"envirowatch/internal/model"
)

// ModelHandle owns the process-wide classifier. Loading is idempotent and
// race-safe: concurrent first requests converge on one shared wrapper, and a
// load failure sticks until the process restarts.
type ModelHandle struct {
	dir     string
	once    sync.Once
	wrapper *model.Wrapper
	err     error
}

func NewModelHandle(dir string) *ModelHandle {
	return &ModelHandle{dir: dir}
}

// Get returns the shared wrapper, loading it on first use.
func (h *ModelHandle) Get() (*model.Wrapper, error) {
	h.once.Do(func() {
		h.wrapper, h.err = model.NewWrapper(h.dir)
	})
	return h.wrapper, h.err
}
