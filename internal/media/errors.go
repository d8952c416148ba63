package media

import "errors"

var (
	// ErrNotFound means the asset, resolution or row does not exist or is deleted.
	ErrNotFound = errors.New("media: not found")
	// ErrInvalid means a required identifying field is missing from the input.
	ErrInvalid = errors.New("media: invalid input")
	// ErrDataCorruption flags stored state that breaks a history invariant,
	// such as orphaned resolution links or two current rows for one asset.
	ErrDataCorruption = errors.New("media: data corruption")
	// ErrConflict means a concurrent writer claimed the same version number.
	// Callers may retry.
	ErrConflict = errors.New("media: version conflict")
)
