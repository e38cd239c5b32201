//go:build !unix

package lockfile

const supported = false

func acquire(path string) (Lock, error) {
	return nil, ErrUnsupported
}
