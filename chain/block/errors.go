package block

import "fmt"

// IntegrityCheckError reports that Verify could not compute a digest at all,
// as opposed to computing one that differs from the stored hash.
type IntegrityCheckError struct {
	Err error
}

func (e *IntegrityCheckError) Error() string {
	return fmt.Sprintf("integrity check failed: %s", e.Err)
}

func (e *IntegrityCheckError) Unwrap() error {
	return e.Err
}

// PayloadDecodeError reports that a block body could not be decoded back
// into its original payload.
type PayloadDecodeError struct {
	Err error
}

func (e *PayloadDecodeError) Error() string {
	return fmt.Sprintf("failed to decode payload: %s", e.Err)
}

func (e *PayloadDecodeError) Unwrap() error {
	return e.Err
}
