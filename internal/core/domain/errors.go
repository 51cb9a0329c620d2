package domain

import (
	"errors"
	"fmt"
)

var (
	ErrOutlineNotFound  = errors.New("outline not found")
	ErrNodeNotFound     = errors.New("node not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrGenerationFailed = errors.New("generation failed")
	ErrNetworkFailed    = errors.New("collaborator request failed")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
