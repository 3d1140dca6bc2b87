//go:build !linux

package platform

func Sync() error {
	return ErrNotSupported
}
