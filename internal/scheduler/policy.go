// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package scheduler

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/matt-FFFFFF/tickbox/internal/step"
)

// ErrBadRange is returned when a range expression cannot be parsed.
var ErrBadRange = errors.New("invalid range expression")

// PolicyKind discriminates the SyncPolicy variants.
type PolicyKind int

const (
	// PolicySequential makes every task a barrier: pure sequential execution.
	PolicySequential PolicyKind = iota
	// PolicyRanges declares parallel groups as inclusive step-id ranges.
	PolicyRanges
	// PolicyNamePatterns declares parallel groups by regex match on the
	// step name, first matching pattern wins.
	PolicyNamePatterns
)

// String implements the Stringer interface for PolicyKind.
func (k PolicyKind) String() string {
	switch k {
	case PolicySequential:
		return "sequential"
	case PolicyRanges:
		return "ranges"
	case PolicyNamePatterns:
		return "name-patterns"
	default:
		return "unknown"
	}
}

// IDRange is an inclusive range of step ids forming one parallel group.
type IDRange struct {
	Lo int
	Hi int
}

// Contains reports whether id falls inside the range.
func (r IDRange) Contains(id int) bool {
	return id >= r.Lo && id <= r.Hi
}

// SyncPolicy decides which tasks may share the running set. It is a tagged
// variant: exactly one of the group definitions applies, per Kind.
type SyncPolicy struct {
	kind     PolicyKind
	ranges   []IDRange
	patterns []*regexp.Regexp
}

// Sequential returns the default policy: every task is a barrier.
func Sequential() SyncPolicy {
	return SyncPolicy{kind: PolicySequential}
}

// Ranges returns a policy whose parallel groups are id ranges.
// An empty list degrades to Sequential.
func Ranges(ranges []IDRange) SyncPolicy {
	if len(ranges) == 0 {
		return Sequential()
	}

	return SyncPolicy{kind: PolicyRanges, ranges: ranges}
}

// NamePatterns returns a policy whose parallel groups are regex match sets
// over step names. An empty list degrades to Sequential.
func NamePatterns(patterns []*regexp.Regexp) SyncPolicy {
	if len(patterns) == 0 {
		return Sequential()
	}

	return SyncPolicy{kind: PolicyNamePatterns, patterns: patterns}
}

// Kind returns the policy variant.
func (p SyncPolicy) Kind() PolicyKind {
	return p.kind
}

// ParseRanges parses a comma-separated list of inclusive id ranges, e.g.
// "0-2,5-7". A bare id is a single-element range: "3" means "3-3".
func ParseRanges(s string) ([]IDRange, error) {
	parts := strings.Split(s, ",")
	ranges := make([]IDRange, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("%w: empty element in %q", ErrBadRange, s)
		}

		lo, hi, found := strings.Cut(part, "-")
		if !found {
			hi = lo
		}

		loN, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadRange, part)
		}

		hiN, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadRange, part)
		}

		if loN < 0 || hiN < loN {
			return nil, fmt.Errorf("%w: %q", ErrBadRange, part)
		}

		ranges = append(ranges, IDRange{Lo: loN, Hi: hiN})
	}

	return ranges, nil
}

// syncPoint reports whether t must wait for every running task to finish
// before starting. A task joins an existing batch only when it and all
// currently running tasks belong to the same declared group; a task that
// matches no group is an unconditional barrier.
func syncPoint(t *step.Task, running []*step.Task, p SyncPolicy) bool {
	switch p.kind {
	case PolicyRanges:
		group, ok := firstRange(p.ranges, t.ID)
		if !ok {
			return true
		}

		for _, r := range running {
			if !group.Contains(r.ID) {
				return true
			}
		}

		return false

	case PolicyNamePatterns:
		group, ok := firstPattern(p.patterns, t.Name)
		if !ok {
			return true
		}

		for _, r := range running {
			if !group.MatchString(r.Name) {
				return true
			}
		}

		return false

	case PolicySequential:
		return true

	default:
		return true
	}
}

// firstRange finds the first range containing id.
func firstRange(ranges []IDRange, id int) (IDRange, bool) {
	for _, r := range ranges {
		if r.Contains(id) {
			return r, true
		}
	}

	return IDRange{}, false
}

// firstPattern finds the first pattern matching name.
func firstPattern(patterns []*regexp.Regexp, name string) (*regexp.Regexp, bool) {
	for _, p := range patterns {
		if p.MatchString(name) {
			return p, true
		}
	}

	return nil, false
}
