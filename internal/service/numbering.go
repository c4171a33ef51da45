package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const orderNumberLayout = "20060102"

// OrderNumberPrefix returns the day-scoped prefix, e.g. "SO-20261014-"
func OrderNumberPrefix(day time.Time) string {
	return "SO-" + day.Format(orderNumberLayout) + "-"
}

// NextOrderNumber returns prefix followed by one more than the highest trailing
// sequence among existing, zero padded to four digits. Numbers that do not
// carry the prefix or a numeric suffix are ignored.
func NextOrderNumber(prefix string, existing []string) string {
	maxSeq := 0
	for _, number := range existing {
		if !strings.HasPrefix(number, prefix) {
			continue
		}
		seq, err := strconv.Atoi(strings.TrimPrefix(number, prefix))
		if err != nil || seq < 0 {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return fmt.Sprintf("%s%04d", prefix, maxSeq+1)
}
