// Package counter implements the reusable down/up-counter framework that
// backs every mapper's IRQ machinery: a configurable range, step,
// wraparound, auto-trigger condition, forced-reload timing, disable
// semantics, and an optional prescaler.
package counter

// AutoTriggerWhen selects what condition, reached during a tick, fires
// the counter's trigger (subject to triggering being enabled).
type AutoTriggerWhen struct {
	kind     autoTriggerKind
	endCount uint16
}

type autoTriggerKind int

const (
	autoTriggerWrapping autoTriggerKind = iota
	autoTriggerEndingOn
	autoTriggerStepSizedTransitionTo
)

func Wrapping() AutoTriggerWhen { return AutoTriggerWhen{kind: autoTriggerWrapping} }
func EndingOn(count uint16) AutoTriggerWhen {
	return AutoTriggerWhen{kind: autoTriggerEndingOn, endCount: count}
}
func StepSizedTransitionTo(count uint16) AutoTriggerWhen {
	return AutoTriggerWhen{kind: autoTriggerStepSizedTransitionTo, endCount: count}
}

// ForcedReloadTiming selects whether a forced reload takes effect the
// instant it is requested, or is deferred to the counter's next tick.
type ForcedReloadTiming int

const (
	Immediate ForcedReloadTiming = iota
	OnNextTick
)

// WhenDisabledPrevent selects what a disabled counter stops doing.
type WhenDisabledPrevent int

const (
	PreventCounting WhenDisabledPrevent = iota
	PreventTriggering
	PreventBoth
)

// PrescalerTriggeredBy selects whether the prescaler fires on an
// already-zero count or on wrapping back to zero.
type PrescalerTriggeredBy int

const (
	AlreadyZero PrescalerTriggeredBy = iota
	WrappingToZero
)

// PrescalerBehaviorOnForcedReload selects what a forced reload does to
// the prescaler's own count.
type PrescalerBehaviorOnForcedReload int

const (
	PrescalerDoNothing PrescalerBehaviorOnForcedReload = iota
	PrescalerClearCount
)

type prescaler struct {
	multiple    uint8
	triggeredBy PrescalerTriggeredBy
	onReload    PrescalerBehaviorOnForcedReload
	count       uint8
	mask        uint8
	step        int8
}

func defaultPrescaler() prescaler {
	return prescaler{multiple: 1, triggeredBy: AlreadyZero, mask: 0xFF, step: 1}
}

func (p *prescaler) enabled() bool { return p.multiple > 1 }

func (p *prescaler) tick() bool {
	old := p.count
	p.count = uint8(int16(p.count) + int16(p.step))
	p.count %= p.multiple
	switch p.triggeredBy {
	case AlreadyZero:
		return old&p.mask == 0
	default:
		return p.count&p.mask == 0
	}
}

type valueRange struct {
	min, max uint16
}

func (r valueRange) contains(v uint16) bool { return v >= r.min && v <= r.max }

// TickResult reports what happened on a single tick: skipped means the
// prescaler swallowed the tick, wrapped means the counter re-seeded,
// triggered means the auto-trigger fired and triggering was enabled.
type TickResult struct {
	Skipped   bool
	Wrapped   bool
	Triggered bool
}

// counter is the shared engine behind DirectlySetCounter and
// ReloadDrivenCounter.
type counter struct {
	fullRange    valueRange
	currentRange valueRange
	wraps        bool

	step               int8
	autoTriggeredBy    AutoTriggerWhen
	whenDisabledPrevent WhenDisabledPrevent

	triggeringEnabled bool
	countingEnabled   bool
	count             uint16
	prescaler         prescaler
}

func (c *counter) enable() {
	c.triggeringEnabled = true
	c.countingEnabled = true
}

func (c *counter) disable() {
	switch c.whenDisabledPrevent {
	case PreventCounting:
		c.countingEnabled = false
	case PreventTriggering:
		c.triggeringEnabled = false
	case PreventBoth:
		c.countingEnabled = false
		c.triggeringEnabled = false
	}
}

func (c *counter) setEnabled(enabled bool) {
	if enabled {
		c.enable()
	} else {
		c.disable()
	}
}

func (c *counter) targetCount() uint16 {
	switch c.autoTriggeredBy.kind {
	case autoTriggerWrapping:
		return c.reloadValue()
	default:
		return c.autoTriggeredBy.endCount
	}
}

func (c *counter) endCount() uint16 {
	if c.step > 0 {
		return c.currentRange.max
	}
	return c.currentRange.min
}

func (c *counter) reloadValue() uint16 {
	if c.step > 0 {
		return c.currentRange.min
	}
	return c.currentRange.max
}

func (c *counter) modifyReloadValue(modify func(uint16) uint16) {
	if c.step > 0 {
		c.currentRange = valueRange{min: modify(c.currentRange.min), max: c.currentRange.max}
	} else {
		c.currentRange = valueRange{min: c.currentRange.min, max: modify(c.currentRange.max)}
	}
}

func (c *counter) tick(forcedReloadPending, triggeredByForcing bool) TickResult {
	oldCount := c.count
	wrapped := false

	if c.countingEnabled {
		if !c.prescaler.tick() {
			return TickResult{Skipped: true}
		}

		endReached := oldCount == c.endCount()
		switch {
		case forcedReloadPending:
			c.count = c.reloadValue()
		case !endReached:
			c.count = uint16(int32(oldCount) + int32(c.step))
		case c.wraps:
			c.count = c.reloadValue()
			wrapped = true
		default:
			// stays at the end count
		}
	}

	newCount := c.count
	var autoTriggered bool
	switch c.autoTriggeredBy.kind {
	case autoTriggerWrapping:
		autoTriggered = wrapped
	case autoTriggerEndingOn:
		autoTriggered = newCount == c.targetCount()
	case autoTriggerStepSizedTransitionTo:
		autoTriggered = int32(c.targetCount())-int32(oldCount) == int32(c.step) && newCount == c.targetCount()
	}

	triggerIfEnabled := autoTriggered || triggeredByForcing
	return TickResult{Wrapped: wrapped, Triggered: triggerIfEnabled && c.triggeringEnabled}
}

// Info is a read-only snapshot of a counter's live state, for diagnostic
// tooling.
type Info struct {
	CountingEnabled   bool
	TriggeringEnabled bool
	Count             uint16
}

func (c *counter) info() Info {
	return Info{CountingEnabled: c.countingEnabled, TriggeringEnabled: c.triggeringEnabled, Count: c.count}
}
