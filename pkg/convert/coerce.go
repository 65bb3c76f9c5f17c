package convert

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/goliatone/go-modeladmin/pkg/form"
)

// NullBoolChoices is the choice set of a tri-state boolean.
func NullBoolChoices() []form.Choice {
	return []form.Choice{
		{Value: nil, Label: "Unknown"},
		{Value: true, Label: "Yes"},
		{Value: false, Label: "No"},
	}
}

// CoerceNullBool maps tri-state input onto nil, true or false. "None" and
// nil map to nil, "True"/"False" and booleans to themselves; anything else is
// parsed as an integer and compared to zero.
func CoerceNullBool(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case bool:
		return v, nil
	case string:
		switch v {
		case "None":
			return nil, nil
		case "True":
			return true, nil
		case "False":
			return false, nil
		}
	}

	n, err := strconv.Atoi(strings.TrimSpace(fmt.Sprint(value)))
	if err != nil {
		return nil, errors.Wrapf(err, "convert: invalid tri-state value %q", fmt.Sprint(value))
	}
	return n != 0, nil
}

func toLabel(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}
