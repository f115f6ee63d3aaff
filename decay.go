package retentionkeeper

// DecayEngine applies temporal decay to SHORT_TERM items as the conversation
// moves on. Apply is idempotent: calling it twice with the same
// current_turn leaves the item unchanged on the second call.
type DecayEngine struct{}

func NewDecayEngine() *DecayEngine { return &DecayEngine{} }

// Apply decays an item that has gone idle: items idle more than DecayWindowTurns lose
// DecayRate points per turn past the window, and drop to IMMEDIATE_DISCARD
// once the decayed score falls below 3. Only SHORT_TERM items decay;
// LONG_TERM, IMMEDIATE_DISCARD and superseded items are left unchanged.
func (d *DecayEngine) Apply(item *MemoryItem, currentTurn int, cfg Config) {
	if item.Retention != ShortTerm || item.SupersededBy != nil {
		return
	}

	turnsAgo := currentTurn - item.UtteranceRef.TurnIndex
	if turnsAgo <= cfg.DecayWindowTurns {
		return
	}
	if currentTurn == item.decayAppliedThroughTurn {
		return
	}
	if item.decayAppliedThroughTurn == 0 {
		item.decayBase = item.AdjustedScore
	}

	decayed := item.decayBase - cfg.DecayRate*float64(turnsAgo-cfg.DecayWindowTurns)
	delta := decayed - item.AdjustedScore

	item.AdjustedScore = decayed
	item.decayAppliedThroughTurn = currentTurn
	item.Trace = append(item.Trace, TraceEntry{Tag: TagDecay, Name: "decay", Delta: delta})

	if decayed < 3 {
		item.Retention = ImmediateDiscard
	}
}
