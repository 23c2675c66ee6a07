package logging

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// Strings logs any slice of Stringers, e.g. a set of dates, as an array field.
type Strings[T fmt.Stringer] []T

func (a Strings[T]) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, v := range a {
		enc.AppendString(v.String())
	}
	return nil
}
