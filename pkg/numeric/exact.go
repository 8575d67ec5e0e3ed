package numeric

import (
	"encoding/json"
	"math"
	"math/big"
	"strings"
)

// IntegerValue returns the exact integer held by value when it originates as
// an integer: Go integer kinds, big integers, or an unsuffixed base-10 integer
// literal in a string or json.Number.
func IntegerValue(value interface{}) (*big.Int, bool) {
	switch v := value.(type) {
	case int:
		return big.NewInt(int64(v)), true
	case int32:
		return big.NewInt(int64(v)), true
	case int64:
		return big.NewInt(v), true
	case *int64:
		if v == nil {
			return nil, false
		}
		return big.NewInt(*v), true
	case uint:
		return new(big.Int).SetUint64(uint64(v)), true
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), true
	case uint64:
		return new(big.Int).SetUint64(v), true
	case *big.Int:
		if v == nil {
			return nil, false
		}
		return new(big.Int).Set(v), true
	case big.Int:
		return new(big.Int).Set(&v), true
	case json.Number:
		return parseIntegerLiteral(string(v))
	case string:
		return parseIntegerLiteral(v)
	default:
		return nil, false
	}
}

func parseIntegerLiteral(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, false
	}
	return n, true
}

// ExactEqual reports whether a and b hold the same value in their original
// representation. Two integers are compared as big integers, so values beyond
// float64 precision are never conflated. Any other pair is compared after
// normalization with strict float equality, no epsilon. Missing or
// unparsable values are never equal.
func ExactEqual(a, b interface{}) bool {
	ai, aok := IntegerValue(a)
	bi, bok := IntegerValue(b)
	if aok && bok {
		return ai.Cmp(bi) == 0
	}

	af := NormalizeToBaseUnits(a)
	bf := NormalizeToBaseUnits(b)
	if af == nil || bf == nil {
		return false
	}
	return *af == *bf
}

// BigIntToFloat converts v to float64 for percentage math. Precision loss is
// reported through the accuracy flag; the result is only fit for display.
func BigIntToFloat(v *big.Int) (float64, big.Accuracy) {
	if v == nil {
		return 0, big.Exact
	}
	return new(big.Float).SetInt(v).Float64()
}

// ToInt64 returns value as a whole number of base units. Integer inputs are
// taken exactly; anything else is normalized and rounded. It returns nil for
// missing, unparsable or out-of-range values.
func ToInt64(value interface{}) *int64 {
	if n, ok := IntegerValue(value); ok {
		if !n.IsInt64() {
			return nil
		}
		v := n.Int64()
		return &v
	}

	f := NormalizeToBaseUnits(value)
	if f == nil || math.Abs(*f) >= math.MaxInt64 {
		return nil
	}
	v := int64(math.Round(*f))
	return &v
}
