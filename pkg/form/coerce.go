package form

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

func coerce(field Field, raw []string) (any, error) {
	first := ""
	if len(raw) > 0 {
		first = raw[0]
	}

	switch field.Kind {
	case KindInteger:
		value, err := strconv.ParseInt(strings.TrimSpace(first), 10, 64)
		if err != nil {
			return nil, errors.New("Not a valid integer value.")
		}
		return value, nil
	case KindDecimal:
		value, err := strconv.ParseFloat(strings.TrimSpace(first), 64)
		if err != nil {
			return nil, errors.New("Not a valid decimal value.")
		}
		return value, nil
	case KindBoolean:
		switch strings.ToLower(strings.TrimSpace(first)) {
		case "", "false":
			return false, nil
		default:
			return true, nil
		}
	case KindDate, KindDateTime:
		joined := strings.TrimSpace(strings.Join(raw, " "))
		value, err := time.Parse(field.layout(), joined)
		if err != nil {
			if field.Kind == KindDate {
				return nil, errors.New("Not a valid date value.")
			}
			return nil, errors.New("Not a valid datetime value.")
		}
		return value, nil
	case KindSelect:
		return coerceChoice(field, first)
	case KindModelReference:
		pk := strings.TrimSpace(first)
		if pk == "" {
			return nil, nil
		}
		return pk, nil
	default:
		return first, nil
	}
}

func coerceChoice(field Field, raw string) (any, error) {
	var candidate any = raw
	if field.Coerce != nil {
		value, err := field.Coerce(raw)
		if err != nil {
			return nil, errors.New("Invalid Choice: could not coerce.")
		}
		candidate = value
	}
	for _, choice := range field.Choices {
		if choiceMatches(choice.Value, candidate, field.Coerce != nil) {
			return choice.Value, nil
		}
	}
	return nil, errors.New("Not a valid choice.")
}

func choiceMatches(choice, candidate any, typed bool) bool {
	if typed {
		if choice == nil || candidate == nil {
			return choice == nil && candidate == nil
		}
		if reflect.TypeOf(choice).Comparable() && reflect.TypeOf(candidate).Comparable() {
			return choice == candidate
		}
	}
	if choice == nil {
		return candidate == nil || candidate == ""
	}
	return fmt.Sprint(choice) == fmt.Sprint(candidate)
}

// TimeOnly is a filter that reduces time values to their clock component on
// the zero date. Other values pass through.
func TimeOnly(value any) any {
	value = derefTime(value)
	clock, ok := value.(interface{ Clock() (int, int, int) })
	if !ok {
		return value
	}
	h, m, s := clock.Clock()
	nsec := 0
	if t, isTime := value.(time.Time); isTime {
		nsec = t.Nanosecond()
	}
	return time.Date(0, time.January, 1, h, m, s, nsec, time.UTC)
}

// DateOnly is a filter that truncates time values to midnight of their date.
func DateOnly(value any) any {
	value = derefTime(value)
	dated, ok := value.(interface {
		Date() (int, time.Month, int)
	})
	if !ok {
		return value
	}
	y, mo, d := dated.Date()
	loc := time.UTC
	if t, isTime := value.(time.Time); isTime {
		loc = t.Location()
	}
	return time.Date(y, mo, d, 0, 0, 0, 0, loc)
}

func derefTime(value any) any {
	if ptr, ok := value.(*time.Time); ok {
		if ptr == nil {
			return nil
		}
		return *ptr
	}
	return value
}
