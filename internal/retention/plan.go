package retention

import (
	"time"

	"github.com/calderaops/snapsweep/internal/snapshot"
)

// Action is the final disposition of one candidate.
type Action string

const (
	Keep   Action = "keep"
	Remove Action = "remove"
)

// Decision records the disposition of a single snapshot. For kept snapshots
// Tier names the tier that retained it; for removals Tier is empty.
type Decision struct {
	Snapshot snapshot.Snapshot
	Action   Action
	Tier     string
}

// TierWindow reports one tier's computed window, for logging and audit.
type TierWindow struct {
	Name   string
	Span   int
	Cutoff time.Time
}

// Plan is the complete outcome of tiered selection. Every candidate appears
// in Decisions exactly once, newest first. The retained and doomed sets are
// kept explicit rather than mutating a shared list in place.
type Plan struct {
	Anchor    time.Time
	Tiers     []TierWindow
	Decisions []Decision
}

// Empty reports whether the candidate set was empty.
func (p Plan) Empty() bool { return len(p.Decisions) == 0 }

// Kept returns the retained snapshots, newest first.
func (p Plan) Kept() []snapshot.Snapshot {
	var out []snapshot.Snapshot
	for _, d := range p.Decisions {
		if d.Action == Keep {
			out = append(out, d.Snapshot)
		}
	}
	return out
}

// Doomed returns the snapshots selected for deletion, newest first.
func (p Plan) Doomed() []snapshot.Snapshot {
	var out []snapshot.Snapshot
	for _, d := range p.Decisions {
		if d.Action == Remove {
			out = append(out, d.Snapshot)
		}
	}
	return out
}

// Apply runs the five tiers, in order, over the candidate set and returns
// the resulting plan. The anchor is the newest candidate's timestamp,
// computed once and fixed for all tiers.
//
// All tiers share one cursor into the ordered candidate list: each tier
// resumes scanning exactly where the previous tier stopped, and a tier's
// "last kept bucket" is seeded from the snapshot most recently retained by
// any earlier tier, re-keyed at the current tier's granularity. A tier scans
// while the candidate timestamp is strictly after its cutoff; candidates
// past every window are never scanned and stay unretained.
//
// The newest snapshot itself is always retained. It anchors every window and
// is by definition the newest member of its hourly bucket, so retention can
// never empty a non-empty candidate set - even with all spans zero.
func Apply(policy Policy, snaps []snapshot.Snapshot) Plan {
	policy = policy.Normalize()

	ordered := make([]snapshot.Snapshot, len(snaps))
	copy(ordered, snaps)
	snapshot.SortDescending(ordered)

	var plan Plan
	if len(ordered) == 0 {
		return plan
	}

	anchor := ordered[0].Timestamp
	plan.Anchor = anchor

	kept := make([]bool, len(ordered))
	keptBy := make([]string, len(ordered))

	kept[0] = true
	keptBy[0] = tiers[0].name
	last := ordered[0] // most recently retained snapshot, threaded across tiers

	cursor := 0
	for _, tr := range tiers {
		span := tr.span(policy)
		cutoff := tr.cutoff(anchor, span)
		plan.Tiers = append(plan.Tiers, TierWindow{Name: tr.name, Span: span, Cutoff: cutoff})

		lastBucket := tr.bucket(last.Timestamp)
		for cursor < len(ordered) && ordered[cursor].Timestamp.After(cutoff) {
			if b := tr.bucket(ordered[cursor].Timestamp); b != lastBucket {
				kept[cursor] = true
				keptBy[cursor] = tr.name
				lastBucket = b
				last = ordered[cursor]
			}
			cursor++
		}
	}

	plan.Decisions = make([]Decision, len(ordered))
	for i, s := range ordered {
		d := Decision{Snapshot: s, Action: Remove}
		if kept[i] {
			d.Action = Keep
			d.Tier = keptBy[i]
		}
		plan.Decisions[i] = d
	}
	return plan
}
