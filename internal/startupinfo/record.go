package startupinfo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Record is the only state carried across boots.
type Record struct {
	// LastStartup is the wall-clock time of the most recent recorded boot, in epoch seconds.
	LastStartup int64
	// RebootCount is the number of consecutive boots that came too close together.
	RebootCount uint32
}

var errFieldCount = errors.New("startupinfo: expected exactly two fields")

// Encode renders a record in the on-disk format: "<epoch> <count>".
// No IO. No side effects.
func Encode(r Record) []byte {
	return []byte(fmt.Sprintf("%d %d", r.LastStartup, r.RebootCount))
}

// Decode parses the on-disk format.
// Any deviation (field count, sign, range, non-digits) is an error.
func Decode(data []byte) (Record, error) {
	fields := strings.Fields(string(data))
	if len(fields) != 2 {
		return Record{}, errFieldCount
	}

	ts, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("startupinfo: last startup: %w", err)
	}

	count, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return Record{}, fmt.Errorf("startupinfo: reboot count: %w", err)
	}

	return Record{LastStartup: ts, RebootCount: uint32(count)}, nil
}
