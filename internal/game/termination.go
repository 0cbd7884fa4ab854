package game

// checkTermination evaluates end conditions in fixed precedence:
// victory, then timeout, then all participants down, then collapse.
// The ordering matters on the exact tick where several hold at once;
// the kinder outcome wins.
func (e *Engine) checkTermination() {
	progress := e.progress()
	if progress > e.highWater {
		e.highWater = progress
	}

	switch {
	case progress >= 1:
		e.finish(ReasonVictory)
	case e.tick >= e.timeLimitTicks:
		e.finish(ReasonTimeout)
	case e.allDown():
		e.finish(ReasonAllDown)
	case e.highWater >= e.diff.CollapseHigh && progress < e.diff.CollapseLow:
		e.finish(ReasonCollapse)
	}
}

func (e *Engine) allDown() bool {
	for _, p := range e.participants {
		if !p.Down {
			return false
		}
	}
	return len(e.participants) > 0
}

func (e *Engine) finish(r Reason) {
	e.outcome = &Outcome{
		Reason:     r,
		EndTick:    e.tick,
		DurationMs: e.elapsedMs(),
	}
	e.record("match over: %s", r)
}
