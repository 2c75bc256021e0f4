package frame

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrGeometry is returned when two frames cannot be compared cell by cell
var ErrGeometry = errors.New("frame geometry mismatch")

// MismatchError reports a failed comparison. Row, Col and Channel locate the
// first differing sample in scan order; Count is the number of differing
// samples in the whole frame.
type MismatchError struct {
	Row     int
	Col     int
	Channel Channel
	Got     uint8
	Want    uint8
	Count   int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("frame mismatch: %d sample(s) differ, first at row %d col %d %s: got %d want %d",
		e.Count, e.Row, e.Col, e.Channel, e.Got, e.Want)
}

// Compare succeeds only if got and want have identical geometry and every
// sample matches exactly. There is no tolerance.
func Compare(got, want *Frame) error {
	if got.Width != want.Width || got.Height != want.Height || got.Bits != want.Bits {
		return errors.Wrapf(ErrGeometry, "got %s, want %s", got, want)
	}

	var mismatch *MismatchError
	for i := range got.Pix {
		if got.Pix[i] == want.Pix[i] {
			continue
		}
		if mismatch == nil {
			pixel := i / Channels
			mismatch = &MismatchError{
				Row:     pixel / got.Width,
				Col:     pixel % got.Width,
				Channel: Channel(i % Channels),
				Got:     got.Pix[i],
				Want:    want.Pix[i],
			}
		}
		mismatch.Count++
	}

	if mismatch != nil {
		return mismatch
	}
	return nil
}
