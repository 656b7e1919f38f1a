package pairing

import (
	"sort"
	"strings"

	"github.com/casetrace/evidence-analyzer/internal/chunk"
)

// CandidatePair is a canonically ordered pair of chunks from the same case,
// together with the entities the two chunks share. A.ID() < B.ID()
// lexicographically, always.
type CandidatePair struct {
	A              chunk.Accessor
	B              chunk.Accessor
	SharedEntities []string
	Timestamp      string // set only when both chunks coincide on a timeline event
}

// Options controls candidate generation.
type Options struct {
	// RequireEntityOverlap drops pairs whose shared-entity set is empty.
	RequireEntityOverlap bool
	// Entities maps chunk id to the entity names mentioned in that chunk.
	// When nil, a speaker-mention heuristic is used instead.
	Entities map[string][]string
}

// BuildPairs partitions chunks by case and enumerates all unordered
// same-case pairs in deterministic order. Cross-case pairs are never
// produced. Only the upper triangle is visited, so (A,B) and (B,A) cannot
// both appear.
func BuildPairs(chunks []chunk.Accessor, opts Options) []CandidatePair {
	partitions := partitionByCase(chunks)

	caseIDs := make([]string, 0, len(partitions))
	for caseID := range partitions {
		caseIDs = append(caseIDs, caseID)
	}
	sort.Strings(caseIDs)

	var pairs []CandidatePair
	for _, caseID := range caseIDs {
		members := partitions[caseID]
		sort.Slice(members, func(i, j int) bool {
			return members[i].ID() < members[j].ID()
		})

		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				a, b := members[i], members[j]
				shared := sharedEntities(a, b, opts.Entities)
				if opts.RequireEntityOverlap && len(shared) == 0 {
					continue
				}
				pairs = append(pairs, CandidatePair{A: a, B: b, SharedEntities: shared})
			}
		}
	}

	return pairs
}

// AttachTimestamps annotates pairs whose two chunks map onto the same
// timeline timestamp. It never removes a pair; pairs without a common
// timestamp simply proceed unannotated.
func AttachTimestamps(pairs []CandidatePair, byChunk map[string]string) []CandidatePair {
	if len(byChunk) == 0 {
		return pairs
	}
	for i := range pairs {
		ta, okA := byChunk[pairs[i].A.ID()]
		tb, okB := byChunk[pairs[i].B.ID()]
		if okA && okB && ta == tb {
			pairs[i].Timestamp = ta
		}
	}
	return pairs
}

func partitionByCase(chunks []chunk.Accessor) map[string][]chunk.Accessor {
	partitions := make(map[string][]chunk.Accessor)
	for _, c := range chunks {
		partitions[c.CaseID()] = append(partitions[c.CaseID()], c)
	}
	return partitions
}

// sharedEntities computes the entities common to both chunks. With an
// entity map it is a set intersection; without one it falls back to the
// speaker heuristic: a speaker counts as shared when their name (or its
// first token) appears literally in the other chunk's text.
func sharedEntities(a, b chunk.Accessor, entities map[string][]string) []string {
	if entities != nil {
		return intersect(entities[a.ID()], entities[b.ID()])
	}

	var shared []string
	if speakerMentioned(a.Speaker(), b.Text()) {
		shared = append(shared, a.Speaker())
	}
	if b.Speaker() != a.Speaker() && speakerMentioned(b.Speaker(), a.Text()) {
		shared = append(shared, b.Speaker())
	}
	sort.Strings(shared)
	return shared
}

func intersect(xs, ys []string) []string {
	if len(xs) == 0 || len(ys) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(xs))
	for _, x := range xs {
		set[x] = struct{}{}
	}
	var out []string
	seen := make(map[string]struct{})
	for _, y := range ys {
		if _, ok := set[y]; !ok {
			continue
		}
		if _, dup := seen[y]; dup {
			continue
		}
		seen[y] = struct{}{}
		out = append(out, y)
	}
	sort.Strings(out)
	return out
}

func speakerMentioned(speaker, text string) bool {
	speaker = strings.TrimSpace(speaker)
	if speaker == "" {
		return false
	}
	lower := strings.ToLower(text)
	if strings.Contains(lower, strings.ToLower(speaker)) {
		return true
	}
	first := strings.Fields(speaker)[0]
	return strings.Contains(lower, strings.ToLower(first))
}
