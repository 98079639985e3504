// Package scoring holds the regatta scoring engine: the penalty catalog, the
// per-race finish order, the completion decision and the series standings.
// Nothing in here touches storage.
package scoring

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPenalty is returned for codes outside the catalog.
var ErrUnknownPenalty = errors.New("unknown penalty code")

// Penalty is a non-finish outcome. The zero value means "no penalty".
type Penalty string

const (
	DNF Penalty = "DNF" // did not finish
	DNS Penalty = "DNS" // did not start
	DNC Penalty = "DNC" // did not compete
	DSQ Penalty = "DSQ" // disqualified
	OCS Penalty = "OCS" // on course side
	BFD Penalty = "BFD" // black flag disqualification
	RET Penalty = "RET" // retired
)

// DidNotStart is applied to boats missing from a race that is force-completed.
const DidNotStart = DNS

type penaltyInfo struct {
	priority int
	label    string
}

var catalog = map[Penalty]penaltyInfo{
	DNF: {0, "Did Not Finish"},
	DNS: {1, "Did Not Start"},
	DNC: {2, "Did Not Compete"},
	DSQ: {3, "Disqualified"},
	OCS: {4, "On Course Side"},
	BFD: {5, "Black Flag Disqualification"},
	RET: {6, "Retired"},
}

// Penalties returns every catalog code in priority order.
func Penalties() []Penalty {
	return []Penalty{DNF, DNS, DNC, DSQ, OCS, BFD, RET}
}

// ParsePenalty resolves a code case-insensitively.
func ParsePenalty(s string) (Penalty, error) {
	p := Penalty(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPenalty, s)
	}
	return p, nil
}

// Valid reports whether p is in the catalog.
func (p Penalty) Valid() bool {
	_, ok := catalog[p]
	return ok
}

// Priority is the sort rank inside the penalty segment, lower first.
// Codes outside the catalog sort after all known ones.
func (p Penalty) Priority() int {
	if info, ok := catalog[p]; ok {
		return info.priority
	}
	return len(catalog)
}

// Label is the human readable name of the code.
func (p Penalty) Label() string {
	if info, ok := catalog[p]; ok {
		return info.label
	}
	return string(p)
}
