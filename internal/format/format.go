// Package format renders times and fares the way the results page shows them
// in the en-IN locale.
package format

import (
	"fmt"
	"strconv"
	"time"
	_ "time/tzdata"
)

// en-IN abbreviates September as "Sept".
var monthAbbrev = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sept", "Oct", "Nov", "Dec"}

// Time renders t in loc as "1 May 2024, 3:30 pm".
func Time(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%d %s %d, %s", t.Day(), monthAbbrev[t.Month()-1], t.Year(), t.Format("3:04 pm"))
}

// INR renders amount in rupees with Indian digit grouping, e.g. ₹1,23,456.
func INR(amount int) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	value := groupIndian(strconv.Itoa(amount))
	if negative {
		return "-₹" + value
	}
	return "₹" + value
}

// groupIndian groups the last three digits, then pairs.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	for i := len(head) - 2; i > 0; i -= 2 {
		head = head[:i] + "," + head[i:]
	}
	return head + "," + tail
}

// Price renders an optional fare; an unpriced record renders empty.
func Price(amount *int) string {
	if amount == nil {
		return ""
	}
	return INR(*amount)
}
