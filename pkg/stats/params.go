package stats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"

	"stats-tool/pkg/errors"
)

// fieldState tags what a call bag holds for one parameter
type fieldState int

const (
	fieldAbsent fieldState = iota
	fieldValid
	fieldInvalid
)

// field is the decoded form of one parameter: either absent, a usable value,
// or present but unusable. Each parameter maps these states differently, so
// there is no shared validator.
type field[T any] struct {
	state fieldState
	value T
	err   error
}

// CallParams holds the usable values of a call after per-field fallbacks
type CallParams struct {
	Numbers     []float64
	Precision   int
	Percentiles []float64
}

// DecodeCallParams applies the per-field rules: numbers is required and fails
// the call, precision is clamped or defaulted, percentiles are dropped as a set.
func DecodeCallParams(bag map[string]json.RawMessage) (CallParams, *errors.StructuredError) {
	numbers := decodeNumbers(bag)
	switch numbers.state {
	case fieldAbsent:
		return CallParams{}, errInvalidNumbers(nil)
	case fieldInvalid:
		if se, ok := numbers.err.(*errors.StructuredError); ok {
			return CallParams{}, se
		}
		return CallParams{}, errInvalidNumbers(numbers.err)
	}

	params := CallParams{
		Numbers:   numbers.value,
		Precision: DefaultPrecision,
	}

	if precision := decodePrecision(bag); precision.state == fieldValid {
		params.Precision = precision.value
	}

	if percentiles := decodePercentiles(bag); percentiles.state == fieldValid {
		params.Percentiles = percentiles.value
	}

	return params, nil
}

func errInvalidNumbers(cause error) *errors.StructuredError {
	return errors.NewValidationError(errors.ErrCodeInvalidNumbers,
		fmt.Sprintf("'%s' must be a non-empty array", ParamNumbers), cause).
		WithContext("field", ParamNumbers)
}

func decodeNumbers(bag map[string]json.RawMessage) field[[]float64] {
	raw, ok := bag[ParamNumbers]
	if !ok {
		return field[[]float64]{state: fieldAbsent}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil || len(elements) == 0 {
		return field[[]float64]{state: fieldInvalid, err: errInvalidNumbers(err)}
	}

	values := make([]float64, 0, len(elements))
	for i, element := range elements {
		v, err := coerceFloat(element)
		if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
			err = fmt.Errorf("%s is not a finite number", bytes.TrimSpace(element))
		}
		if err != nil {
			return field[[]float64]{
				state: fieldInvalid,
				err: errors.NewValidationError(errors.ErrCodeNonNumericValue,
					fmt.Sprintf("non-numeric value in %s", ParamNumbers), err).
					WithDetails(err.Error()).
					WithContext("field", ParamNumbers).
					WithContext("index", i),
			}
		}
		values = append(values, v)
	}

	return field[[]float64]{state: fieldValid, value: values}
}

// decodePrecision truncates fractional values toward zero and clamps to the
// supported range. Anything that is not a number or numeric string is invalid.
func decodePrecision(bag map[string]json.RawMessage) field[int] {
	raw, ok := bag[ParamPrecision]
	if !ok {
		return field[int]{state: fieldAbsent}
	}

	value, err := decodeScalar(raw)
	if err != nil {
		return field[int]{state: fieldInvalid, err: err}
	}

	var f float64
	switch v := value.(type) {
	case json.Number:
		f, err = v.Float64()
		// out-of-range literals come back as ±Inf and still clamp cleanly
		if err != nil && !math.IsInf(f, 0) {
			return field[int]{state: fieldInvalid, err: err}
		}
	case string:
		f, err = cast.ToFloat64E(strings.TrimSpace(v))
		if err != nil {
			return field[int]{state: fieldInvalid, err: err}
		}
	default:
		return field[int]{state: fieldInvalid, err: fmt.Errorf("%s is not an integer", raw)}
	}

	if math.IsNaN(f) {
		return field[int]{state: fieldInvalid, err: fmt.Errorf("%s is not an integer", raw)}
	}

	f = math.Max(MinPrecision, math.Min(MaxPrecision, math.Trunc(f)))
	return field[int]{state: fieldValid, value: int(f)}
}

// decodePercentiles is all-or-nothing: one bad element invalidates the set.
// Range filtering happens in the engine.
func decodePercentiles(bag map[string]json.RawMessage) field[[]float64] {
	raw, ok := bag[ParamPercentiles]
	if !ok {
		return field[[]float64]{state: fieldAbsent}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil || elements == nil {
		return field[[]float64]{state: fieldInvalid, err: fmt.Errorf("%s must be an array", ParamPercentiles)}
	}

	values := make([]float64, 0, len(elements))
	for _, element := range elements {
		v, err := coerceFloat(element)
		if err != nil {
			return field[[]float64]{state: fieldInvalid, err: err}
		}
		values = append(values, v)
	}

	return field[[]float64]{state: fieldValid, value: values}
}

// decodeScalar decodes raw keeping numbers as json.Number so that literals
// beyond float64 range are reported instead of failing the whole line.
func decodeScalar(raw json.RawMessage) (interface{}, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}

// coerceFloat accepts JSON numbers, numeric strings and booleans
func coerceFloat(raw json.RawMessage) (float64, error) {
	value, err := decodeScalar(raw)
	if err != nil {
		return 0, err
	}

	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%s is out of range for float64", v)
		}
		return f, nil
	case string:
		return cast.ToFloat64E(strings.TrimSpace(v))
	case bool:
		return cast.ToFloat64E(v)
	case nil:
		return 0, fmt.Errorf("null is not a number")
	default:
		return 0, fmt.Errorf("unable to cast %s of type %s to float64", bytes.TrimSpace(raw), jsonKind(value))
	}
}

func jsonKind(value interface{}) string {
	switch value.(type) {
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}
