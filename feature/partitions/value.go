package partitions

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Value is the four-part temporal key identifying a partition. Components
// are compared numerically, so year=2019/month=1 and 2019/01 name the same
// partition.
type Value struct {
	Year  int
	Month int
	Day   int
	Hour  int
}

// ParseValues converts raw value strings into a Value. The catalog stores
// values as strings; anything other than four non-negative integers is
// rejected.
func ParseValues(raw []string) (Value, error) {
	if len(raw) != 4 {
		return Value{}, fmt.Errorf("expected 4 partition values, got %d: %v", len(raw), raw)
	}

	var nums [4]int
	for i, s := range raw {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return Value{}, fmt.Errorf("partition value %q is not a non-negative integer", s)
		}
		nums[i] = n
	}

	return Value{Year: nums[0], Month: nums[1], Day: nums[2], Hour: nums[3]}, nil
}

// Strings returns the canonical zero-padded form of the key.
func (v Value) Strings() []string {
	return []string{
		fmt.Sprintf("%04d", v.Year),
		fmt.Sprintf("%02d", v.Month),
		fmt.Sprintf("%02d", v.Day),
		fmt.Sprintf("%02d", v.Hour),
	}
}

func (v Value) String() string {
	return strings.Join(v.Strings(), "/")
}

// Date returns the day this partition covers, at midnight UTC.
func (v Value) Date() time.Time {
	return time.Date(v.Year, time.Month(v.Month), v.Day, 0, 0, 0, 0, time.UTC)
}

// Less orders values chronologically.
func (v Value) Less(other Value) bool {
	if v.Year != other.Year {
		return v.Year < other.Year
	}
	if v.Month != other.Month {
		return v.Month < other.Month
	}
	if v.Day != other.Day {
		return v.Day < other.Day
	}
	return v.Hour < other.Hour
}

// Descriptor pairs a partition key with the storage location holding its
// data. Raw preserves the value strings exactly as the catalog stores them
// (or as they were matched on disk), since the catalog API addresses
// partitions by their stored strings, not the canonical form.
type Descriptor struct {
	Value    Value
	Raw      []string
	Location string
}
