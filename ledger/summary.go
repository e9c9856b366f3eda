package ledger

import "sort"

// Stats summarizes the ledger.
type Stats struct {
	Total    int
	ByStatus map[Status]int
	ByLang   map[string]int
}

// Languages returns the languages present, sorted.
func (s Stats) Languages() []string {
	langs := make([]string, 0, len(s.ByLang))
	for lang := range s.ByLang {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Summary counts records per status and per language.
func (l *Ledger) Summary() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Stats{
		Total:    len(l.records),
		ByStatus: make(map[Status]int),
		ByLang:   make(map[string]int),
	}
	for _, r := range l.records {
		s.ByStatus[r.Status]++
		s.ByLang[r.TargetLang]++
	}
	return s
}

// Filter returns records matching lang (all languages when empty) and any of
// statuses (all statuses when none given).
func (l *Ledger) Filter(lang string, statuses ...Status) []Record {
	want := make(map[Status]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}

	var out []Record
	for _, r := range l.Records() {
		if lang != "" && r.TargetLang != lang {
			continue
		}
		if len(want) > 0 && !want[r.Status] {
			continue
		}
		out = append(out, r)
	}
	return out
}
