package partitions

import "regexp"

// MatchState classifies a path relative to a table root.
type MatchState int

const (
	// MatchNone means the path cannot form a partition key; the branch is
	// abandoned.
	MatchNone MatchState = iota
	// MatchIncomplete means fewer than four segments have been seen and
	// discovery should keep descending.
	MatchIncomplete
	// MatchComplete means the path encodes a full four-part key.
	MatchComplete
)

var (
	positionalSchema = [4]*regexp.Regexp{
		regexp.MustCompile(`^\d{4}$`),
		regexp.MustCompile(`^\d{2}$`),
		regexp.MustCompile(`^\d{2}$`),
		regexp.MustCompile(`^\d{2}$`),
	}
	hiveSchema = [4]*regexp.Regexp{
		regexp.MustCompile(`^year=(\d+)$`),
		regexp.MustCompile(`^month=(\d+)$`),
		regexp.MustCompile(`^day=(\d+)$`),
		regexp.MustCompile(`^hour=(\d+)$`),
	}
)

// Match parses path segments (relative to the table root) into a partition
// key. Two layouts are recognized: plain digit segments like 2019/01/02/03
// and hive-style segments like year=2019/month=01/day=02/hour=03. A single
// path must use one layout for all four segments; different paths within
// the same table may use different layouts. Segments beyond the fourth
// disqualify the path.
func Match(segments []string) (Value, []string, MatchState) {
	if len(segments) < 4 {
		return Value{}, nil, MatchIncomplete
	}
	if len(segments) > 4 {
		return Value{}, nil, MatchNone
	}

	for _, schema := range [...][4]*regexp.Regexp{positionalSchema, hiveSchema} {
		raw, ok := matchSchema(segments, schema)
		if !ok {
			continue
		}
		value, err := ParseValues(raw)
		if err != nil {
			continue
		}
		return value, raw, MatchComplete
	}

	return Value{}, nil, MatchNone
}

func matchSchema(segments []string, schema [4]*regexp.Regexp) ([]string, bool) {
	raw := make([]string, 4)
	for i, segment := range segments {
		m := schema[i].FindStringSubmatch(segment)
		if m == nil {
			return nil, false
		}
		// the digits are the last submatch: the whole segment for the
		// positional layout, the capture group for hive
		raw[i] = m[len(m)-1]
	}
	return raw, true
}
