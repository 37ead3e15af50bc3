package batch

import (
	"context"
	"errors"

	"github.com/haivivi/wordsplice/pkg/fragment"
	"github.com/haivivi/wordsplice/pkg/phoneme"
	"github.com/haivivi/wordsplice/pkg/splice"
)

// ErrWriteFailure is returned when a finished word cannot be stored.
var ErrWriteFailure = errors.New("batch: write failure")

// Kind labels a failure class in reports, logs and metrics.
type Kind string

const (
	KindMalformedMapping = Kind("MalformedMapping")
	KindFragmentNotFound = Kind("FragmentNotFound")
	KindUnsupportedShape = Kind("UnsupportedSyllableShape")
	KindWriteFailure     = Kind("WriteFailure")
	KindCanceled         = Kind("Canceled")
	KindUnknown          = Kind("Unknown")
)

// Classify maps err onto its failure class. A nil error has no kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, phoneme.ErrMalformedMapping):
		return KindMalformedMapping
	case errors.Is(err, fragment.ErrFragmentNotFound):
		return KindFragmentNotFound
	case errors.Is(err, splice.ErrUnsupportedShape):
		return KindUnsupportedShape
	case errors.Is(err, ErrWriteFailure):
		return KindWriteFailure
	}
	return KindUnknown
}
