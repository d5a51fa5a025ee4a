package rollout

import "errors"

// Error implements errors unique to a rollout buffer.
type Error struct {
	Op  string
	Err error
}

// Error satisifes the error interface
func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

var errEmptyBuffer error = errors.New("buffer empty")

var errNotReady = errors.New("buffer not yet filled to capacity")

var errNotFinalized = errors.New("buffer not yet finalized")

var errInvalidBatchSize = errors.New("batch size must be positive")

// IsNotReady returns whether or not an error reports that the buffer
// has not yet been filled to capacity.
//
// A rollout buffer cannot be read from until a full window of entries
// has been collected.
func IsNotReady(err error) bool {
	if rolloutErr, ok := err.(*Error); ok {
		err = rolloutErr.Err
	}
	return err == errNotReady
}

// IsNotFinalized returns whether or not an error reports that the
// advantage estimates of the buffer have not yet been computed.
func IsNotFinalized(err error) bool {
	if rolloutErr, ok := err.(*Error); ok {
		err = rolloutErr.Err
	}
	return err == errNotFinalized
}

// IsEmptyBuffer returns whether or not an error reports that a rollout
// buffer holds no entries.
func IsEmptyBuffer(err error) bool {
	if rolloutErr, ok := err.(*Error); ok {
		err = rolloutErr.Err
	}
	return err == errEmptyBuffer
}
