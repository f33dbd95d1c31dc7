package layout

// -- Element List Utilities --

// RemoveLegalBreaks returns a copy of list in which no break remains legal:
// every non-forbidden penalty becomes forbidden, and every glue that directly
// follows a box is shielded by a forbidden penalty. Forced breaks are kept.
func RemoveLegalBreaks(list []Element) []Element {
	out := make([]Element, 0, len(list))
	for i, el := range list {
		switch e := el.(type) {
		case *Penalty:
			if e.IsForced() || e.IsForbidden() {
				out = append(out, e)
				continue
			}
			out = append(out, &Penalty{
				Width:      e.Width,
				Value:      Infinite,
				Flagged:    e.Flagged,
				BreakClass: e.BreakClass,
				Pos:        e.Pos,
				Auxiliary:  e.Auxiliary,
			})
		case *Glue:
			if i > 0 {
				if _, prevIsBox := list[i-1].(*Box); prevIsBox {
					out = append(out, NewPenalty(0, Infinite, false, ClassAuto, nil, true))
				}
			}
			out = append(out, e)
		default:
			out = append(out, el)
		}
	}
	return out
}
