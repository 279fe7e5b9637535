package bbl

const (
	eventIDSyncBeep            = 0
	eventIDAutotuneCycleStart  = 10
	eventIDAutotuneCycleResult = 11
)

// parseEventFrame reads an 'E' frame's payload: a one-byte event ID followed
// by an ID-specific body. Unrecognised IDs yield EventInvalid but consume no
// further bytes, since the body length is unknown without the ID.
func parseEventFrame(c *cursor) EventRecord {
	id, _ := c.read()
	switch id {
	case eventIDSyncBeep:
		return EventRecord{Tag: EventSyncBeep, Time: readUnsignedVB(c)}
	case eventIDAutotuneCycleStart:
		rec := EventRecord{Tag: EventAutotuneCycleStart}
		rec.Phase, _ = c.read()
		rec.Cycle, _ = c.read()
		rec.P, _ = c.read()
		rec.I, _ = c.read()
		rec.D, _ = c.read()
		return rec
	case eventIDAutotuneCycleResult:
		rec := EventRecord{Tag: EventAutotuneCycleResult}
		rec.Overshot, _ = c.read()
		rec.P, _ = c.read()
		rec.I, _ = c.read()
		rec.D, _ = c.read()
		return rec
	default:
		return EventRecord{Tag: EventInvalid}
	}
}
