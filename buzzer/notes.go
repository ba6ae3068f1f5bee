package buzzer

// noteList is a fixed capacity list of sounding notes.
// Its backing array is allocated once and never grows; order is preserved on removal
// because a note's position decides which channel plays it.
type noteList struct {
	notes []Note
}

func newNoteList(capacity int) noteList {
	return noteList{notes: make([]Note, 0, capacity)}
}

func (l *noteList) len() int { return len(l.notes) }

func (l *noteList) at(i int) Note { return l.notes[i] }

// push appends a note. It returns false when the list is full.
func (l *noteList) push(n Note) bool {
	if len(l.notes) == cap(l.notes) {
		return false
	}
	l.notes = append(l.notes, n)
	return true
}

// age takes one beat off every note and drops the notes that have run out,
// shifting the survivors left.
func (l *noteList) age() {
	kept := 0
	for _, n := range l.notes {
		if n.Duration <= 1 {
			continue
		}
		n.Duration--
		l.notes[kept] = n
		kept++
	}
	l.notes = l.notes[:kept]
}

func (l *noteList) clear() { l.notes = l.notes[:0] }
