// pkg/converter/values.go
package converter

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// timeLayouts are tried in order when parsing timestamps from text
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"2006/01/02",
}

// IsNull determines if a value should be treated as NULL
func IsNull(value interface{}) bool {
	if value == nil {
		return true
	}

	switch v := value.(type) {
	case string:
		return isNullString(v)
	case []byte:
		return isNullString(string(v))
	}
	return false
}

// NullValues are the text cells treated as NULL
var NullValues = []string{"", "null", "NULL", "nil", "NIL", "NaN", "nan"}

func isNullString(s string) bool {
	s = strings.TrimSpace(s)
	for _, null := range NullValues {
		if s == null {
			return true
		}
	}
	return false
}

// ToString converts an interface to string
func ToString(v interface{}) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// int64Limit is 2^63, the first float64 above math.MaxInt64
const int64Limit = 1 << 63

// ToInt attempts to convert a value to int64. Integral float text such as
// "12.0" is accepted since CSV exports often write ids that way.
func ToInt(v interface{}) (int64, error) {
	if v == nil {
		return 0, errors.New("nil value")
	}

	switch val := v.(type) {
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case uint32:
		return int64(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return 0, errors.New("uint64 value overflow for int64")
		}
		return int64(val), nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) || val < math.MinInt64 || val >= int64Limit {
			return 0, fmt.Errorf("float %v is out of int64 range", val)
		}
		if val != math.Trunc(val) {
			return 0, fmt.Errorf("float %v is not integral", val)
		}
		return int64(val), nil
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case string, []byte:
		cleaned := strings.TrimSpace(ToString(val))
		if cleaned == "" {
			return 0, errors.New("empty string")
		}
		if i, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as integer", cleaned)
		}
		return ToInt(f)
	default:
		return 0, fmt.Errorf("cannot convert %T to int", v)
	}
}

// ToFloat attempts to convert a value to float64
func ToFloat(v interface{}) (float64, error) {
	if v == nil {
		return 0, errors.New("nil value")
	}

	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case string, []byte:
		cleaned := strings.TrimSpace(ToString(val))
		if cleaned == "" {
			return 0, errors.New("empty string")
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as float", cleaned)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to float", v)
	}
}

// ToBool attempts to convert a value to bool
func ToBool(v interface{}) (bool, error) {
	if v == nil {
		return false, errors.New("nil value")
	}

	switch val := v.(type) {
	case bool:
		return val, nil
	case int64:
		return val != 0, nil
	case int:
		return val != 0, nil
	case float64:
		return val != 0, nil
	case string, []byte:
		cleaned := strings.ToLower(strings.TrimSpace(ToString(val)))
		switch cleaned {
		case "true", "t", "yes", "y", "1", "1.0":
			return true, nil
		case "false", "f", "no", "n", "0", "0.0":
			return false, nil
		default:
			return false, fmt.Errorf("cannot parse %q as boolean", cleaned)
		}
	default:
		return false, fmt.Errorf("cannot convert %T to bool", v)
	}
}

// ToTime converts a value to time.Time, reading zone-less text as UTC
func ToTime(v interface{}) (time.Time, error) {
	return ToTimeIn(v, time.UTC)
}

// ToTimeIn converts a value to time.Time, reading zone-less text in loc
func ToTimeIn(v interface{}, loc *time.Location) (time.Time, error) {
	if v == nil {
		return time.Time{}, errors.New("nil value")
	}

	switch val := v.(type) {
	case time.Time:
		return val, nil
	case string, []byte:
		cleaned := strings.TrimSpace(ToString(val))
		if cleaned == "" {
			return time.Time{}, errors.New("empty string")
		}
		for _, layout := range timeLayouts {
			if t, err := time.ParseInLocation(layout, cleaned, loc); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("cannot parse time from %q", cleaned)
	case int64:
		// Unix seconds
		return time.Unix(val, 0).In(loc), nil
	default:
		return time.Time{}, fmt.Errorf("cannot convert %T to time", v)
	}
}
