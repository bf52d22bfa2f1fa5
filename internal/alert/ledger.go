package alert

// Ledger records every qualifying opportunity of the current run, keyed by
// item name. Only the first occurrence per name is surfaced; later ones are
// kept internally without re-notification. Owned by a single run, no
// concurrent writers.
type Ledger struct {
	byName map[string][]*Alert
	order  []string // names in first-occurrence order, for the summary
}

func NewLedger() *Ledger {
	return &Ledger{
		byName: make(map[string][]*Alert),
	}
}

// Record appends a to the ledger and reports whether it is the first alert
// for its item name.
func (l *Ledger) Record(a *Alert) bool {
	name := a.Item.Name
	first := len(l.byName[name]) == 0
	if first {
		l.order = append(l.order, name)
	}
	l.byName[name] = append(l.byName[name], a)
	return first
}

// Count returns the number of distinct alerted item names.
func (l *Ledger) Count() int {
	return len(l.order)
}

// Occurrences returns how many alerts were recorded for name.
func (l *Ledger) Occurrences(name string) int {
	return len(l.byName[name])
}

// FirstPerItem returns each distinct item's first recorded alert, in the
// order the items were first alerted.
func (l *Ledger) FirstPerItem() []*Alert {
	firsts := make([]*Alert, 0, len(l.order))
	for _, name := range l.order {
		firsts = append(firsts, l.byName[name][0])
	}
	return firsts
}
