package warn

import (
	"time"

	"github.com/bakape/caselog/common"
)

// BanLength is a moderator-supplied restriction duration
type BanLength struct {
	// Permanent restrictions have no unit or value
	Permanent bool
	Value     uint
	Unit      string // "hours", "days", "weeks" or "months"
}

// ParseBanLength decodes moderator form input. "permanent" and "" are
// special: the former never expires, the latter means no restriction at all
// and returns ok = false.
func ParseBanLength(length, unit string, value uint) (
	l BanLength, ok bool, err error,
) {
	switch length {
	case "", "none":
		return
	case "permanent":
		// Normalized to zero unit and value
		return BanLength{Permanent: true}, true, nil
	}

	switch unit {
	case "hours", "days", "weeks", "months":
	default:
		err = common.ErrInvalidEnum(unit)
		return
	}
	if value == 0 {
		err = common.ErrInvalidInput("zero ban length")
		return
	}
	return BanLength{Value: value, Unit: unit}, true, nil
}

// Expiry computes the unix expiry date of the restriction counted from the
// given time. 0 = permanent.
func (l BanLength) Expiry(from time.Time) int64 {
	if l.Permanent {
		return 0
	}

	var d time.Duration
	switch l.Unit {
	case "hours":
		d = time.Hour
	case "days":
		d = 24 * time.Hour
	case "weeks":
		d = 7 * 24 * time.Hour
	case "months":
		d = 30 * 24 * time.Hour
	}
	return from.Add(time.Duration(l.Value) * d).Unix()
}
