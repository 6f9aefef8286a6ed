package coerce

import (
	"time"

	"github.com/google/uuid"

	"github.com/colwire/colwire-go/column"
	"github.com/colwire/colwire-go/cwerror"
)

func toBool(v interface{}) (column.Value, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case uint8:
		return x != 0, nil
	case int:
		return x != 0, nil
	default:
		return nil, cwerror.E(cwerror.Validation, "cannot coerce %T to Bool", v)
	}
}

func toDateDays(v interface{}) (column.Value, error) {
	switch x := v.(type) {
	case time.Time:
		days := x.UTC().Unix() / 86400
		if days < 0 || days > 0xffff {
			return nil, cwerror.E(cwerror.Validation, "date %v out of range for Date", x)
		}
		return uint16(days), nil
	case uint16:
		return x, nil
	case int:
		if x < 0 || x > 0xffff {
			return nil, cwerror.E(cwerror.Validation, "day offset %d out of range for Date", x)
		}
		return uint16(x), nil
	default:
		return nil, cwerror.E(cwerror.Validation, "cannot coerce %T to Date", v)
	}
}

func toDateTimeSeconds(v interface{}) (column.Value, error) {
	switch x := v.(type) {
	case time.Time:
		secs := x.UTC().Unix()
		if secs < 0 || secs > int64(^uint32(0)) {
			return nil, cwerror.E(cwerror.Validation, "time %v out of range for DateTime", x)
		}
		return uint32(secs), nil
	case uint32:
		return x, nil
	case int64:
		return uint32(x), nil
	default:
		return nil, cwerror.E(cwerror.Validation, "cannot coerce %T to DateTime", v)
	}
}

func datetime64Scale(precision int) int64 {
	scale := int64(1)
	for i := 0; i < precision; i++ {
		scale *= 10
	}
	return scale
}

func toDateTime64Ticks(precision int, v interface{}) (column.Value, error) {
	switch x := v.(type) {
	case time.Time:
		scale := datetime64Scale(precision)
		return x.UTC().Unix()*scale + int64(x.UTC().Nanosecond())*scale/1e9, nil
	case int64:
		return x, nil
	default:
		return nil, cwerror.E(cwerror.Validation, "cannot coerce %T to DateTime64", v)
	}
}

func datetime64ToTime(precision int, ticks int64) time.Time {
	scale := datetime64Scale(precision)
	secs := ticks / scale
	rem := ticks % scale
	nanos := rem * (1e9 / scale)
	return time.Unix(secs, nanos).UTC()
}

func toUUID(v interface{}) (column.Value, error) {
	switch x := v.(type) {
	case uuid.UUID:
		return x, nil
	case string:
		id, err := uuid.Parse(x)
		if err != nil {
			return nil, cwerror.E(cwerror.Validation, err)
		}
		return id, nil
	default:
		return nil, cwerror.E(cwerror.Validation, "cannot coerce %T to UUID", v)
	}
}
