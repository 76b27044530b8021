// +build !linux

package alloc

import (
	"github.com/lanikai/alohaspa/node"

	errors "golang.org/x/xerrors"
)

func allocMemFd(p Params) (*Set, error) {
	return nil, errors.Errorf("memfd buffers: %w", node.ErrUnsupported)
}
