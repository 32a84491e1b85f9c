package dataset

import "errors"

var (
	// ErrEmptyDataset is returned when a source yields no records
	ErrEmptyDataset = errors.New("dataset is empty")

	// ErrMissingColumn is returned when a required column is absent from the header
	ErrMissingColumn = errors.New("missing required column")

	// ErrInvalidFilter is returned for malformed filter, sort or page parameters
	ErrInvalidFilter = errors.New("invalid filter")
)
