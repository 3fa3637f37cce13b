package modutok

// ConsistencyReport is the result of the Consistency Checker (C4): one
// boolean plus an offender list per test, and an overall verdict.
type ConsistencyReport struct {
	SpecialsConsistent bool
	SpecialOffenders   []string

	NoIntraDuplicates  bool
	DuplicateOffenders []string

	NoCrossCollisions  bool
	CollisionOffenders []string
}

// IsConsistent is true only if every test passed.
func (r ConsistencyReport) IsConsistent() bool {
	return r.SpecialsConsistent && r.NoIntraDuplicates && r.NoCrossCollisions
}

// checkConsistency runs T1-T3 against the tokenizer's current sub-tokenizer
// set. Fewer than two sub-tokenizers trivially pass every test: there is
// nothing to collide with.
func checkConsistency(t *Tokenizer) ConsistencyReport {
	report := ConsistencyReport{SpecialsConsistent: true, NoIntraDuplicates: true, NoCrossCollisions: true}
	if len(t.subs) < 2 {
		return report
	}

	// T1: special consistency. Every sub-tokenizer's added-token
	// content->id map must equal the first's.
	first := addedTokenMap(t.subs[0])
	for _, sub := range t.subs[1:] {
		if !mapsEqual(first, addedTokenMap(sub)) {
			report.SpecialsConsistent = false
			report.SpecialOffenders = append(report.SpecialOffenders, sub.descriptor.Name)
		}
	}

	// T2: no intra-sub duplicates, separately for regulars and specials.
	for _, sub := range t.subs {
		regularIDs := regularIDs(sub)
		if len(regularIDs) != len(uniqueInts(regularIDs)) {
			report.NoIntraDuplicates = false
			report.DuplicateOffenders = append(report.DuplicateOffenders, sub.descriptor.Name)
			continue
		}
		specialIDs := specialIDsOf(sub)
		if len(specialIDs) != len(uniqueInts(specialIDs)) {
			report.NoIntraDuplicates = false
			report.DuplicateOffenders = append(report.DuplicateOffenders, sub.descriptor.Name)
		}
	}

	// T3: no cross-sub collisions among regulars, checked by accumulating a
	// running set and requiring each sub-tokenizer's contribution to grow
	// it by exactly its own regular count. Specials then union with the
	// same rule: a regular ID colliding with a shared special ID is just
	// as much a collision as two subs' regulars colliding with each other.
	seenRegulars := make(map[int]bool)
	for _, sub := range t.subs {
		ids := regularIDs(sub)
		before := len(seenRegulars)
		added := make(map[int]bool, len(ids))
		for _, id := range ids {
			added[id] = true
			seenRegulars[id] = true
		}
		if len(seenRegulars)-before != len(added) {
			report.NoCrossCollisions = false
			report.CollisionOffenders = append(report.CollisionOffenders, sub.descriptor.Name)
		}
	}
	specialIDs := specialIDsOf(t.subs[0])
	before := len(seenRegulars)
	added := make(map[int]bool, len(specialIDs))
	for _, id := range specialIDs {
		added[id] = true
		seenRegulars[id] = true
	}
	if len(seenRegulars)-before != len(added) {
		report.NoCrossCollisions = false
		report.CollisionOffenders = append(report.CollisionOffenders, "<specials>")
	}
	return report
}

func addedTokenMap(sub *subTokenizer) map[string]int {
	m := make(map[string]int, len(sub.doc.AddedTokens))
	for _, at := range sub.doc.AddedTokens {
		m[at.Content] = at.ID
	}
	return m
}

func regularIDs(sub *subTokenizer) []int {
	special := addedTokenMap(sub)
	ids := make([]int, 0, len(sub.doc.Model.Vocab))
	for text, id := range sub.doc.Model.Vocab {
		if _, ok := special[text]; ok {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func specialIDsOf(sub *subTokenizer) []int {
	ids := make([]int, 0, len(sub.doc.AddedTokens))
	for _, at := range sub.doc.AddedTokens {
		ids = append(ids, at.ID)
	}
	return ids
}

func uniqueInts(ids []int) map[int]bool {
	m := make(map[int]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func mapsEqual(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
