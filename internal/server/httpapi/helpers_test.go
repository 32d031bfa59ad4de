package httpapi

import "fmt"

func errWrap(sentinel error, msg string) error {
	return fmt.Errorf("%w: %s", sentinel, msg)
}

func errWrapPrefix(prefix string, sentinel error) error {
	return fmt.Errorf("%s: %w", prefix, sentinel)
}
