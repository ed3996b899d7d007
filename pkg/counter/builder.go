package counter

// Builder constructs a counter at mapper-registration time. The result
// is built once when a mapper is constructed and never touched again.
type Builder struct {
	fullRange    *valueRange
	initialRange *valueRange
	initialCount *uint16
	wraps        *bool

	step                                 *int8
	autoTriggeredBy                      *AutoTriggerWhen
	triggerOnForcedReloadWithTargetCount bool
	forcedReloadTiming                   *ForcedReloadTiming
	whenDisabledPrevent                  *WhenDisabledPrevent
	prescaler                            prescaler
}

// NewBuilder starts a fresh counter configuration with a no-op prescaler.
func NewBuilder() *Builder {
	return &Builder{prescaler: defaultPrescaler()}
}

func (b *Builder) FullRange(start, end uint16) *Builder {
	r := valueRange{min: start, max: end}
	b.fullRange = &r
	return b
}

func (b *Builder) InitialRange(start, end uint16) *Builder {
	r := valueRange{min: start, max: end}
	b.initialRange = &r
	return b
}

func (b *Builder) InitialCount(count uint16) *Builder {
	b.initialCount = &count
	return b
}

func (b *Builder) Wraps(wraps bool) *Builder {
	b.wraps = &wraps
	return b
}

func (b *Builder) Step(step int8) *Builder {
	if step == 0 {
		panic("counter: step must not be zero")
	}
	b.step = &step
	return b
}

func (b *Builder) AutoTriggerWhen(when AutoTriggerWhen) *Builder {
	b.autoTriggeredBy = &when
	return b
}

func (b *Builder) AlsoTriggerOnForcedReloadWithTargetCount() *Builder {
	b.triggerOnForcedReloadWithTargetCount = true
	return b
}

func (b *Builder) ForcedReloadTiming(t ForcedReloadTiming) *Builder {
	b.forcedReloadTiming = &t
	return b
}

func (b *Builder) WhenDisabledPrevent(w WhenDisabledPrevent) *Builder {
	b.whenDisabledPrevent = &w
	return b
}

func (b *Builder) Prescaler(multiple uint8, triggeredBy PrescalerTriggeredBy, onReload PrescalerBehaviorOnForcedReload) *Builder {
	if multiple == 0 {
		panic("counter: prescaler multiple must be positive")
	}
	b.prescaler = prescaler{multiple: multiple, triggeredBy: triggeredBy, onReload: onReload, mask: 0xFF, step: 1}
	return b
}

func (b *Builder) build() counter {
	if b.whenDisabledPrevent == nil {
		panic("counter: WhenDisabledPrevent must be set")
	}
	whenDisabledPrevent := *b.whenDisabledPrevent

	countingEnabled := whenDisabledPrevent == PreventTriggering

	safeForPrescaler := whenDisabledPrevent != PreventCounting
	if !safeForPrescaler && b.prescaler.enabled() {
		panic("counter: PreventCounting must not be combined with a prescaler")
	}

	if b.wraps == nil {
		panic("counter: Wraps must be set")
	}
	wraps := *b.wraps

	if b.autoTriggeredBy == nil {
		panic("counter: AutoTriggerWhen must be set")
	}
	autoTriggeredBy := *b.autoTriggeredBy
	if autoTriggeredBy.kind == autoTriggerWrapping && !wraps {
		panic("counter: Wraps must be true to use AutoTriggerWhen Wrapping")
	}

	if b.fullRange == nil {
		panic("counter: FullRange must be set")
	}
	fullRange := *b.fullRange
	currentRange := fullRange
	if b.initialRange != nil {
		currentRange = *b.initialRange
	}

	count := currentRange.min
	if b.initialCount != nil {
		count = *b.initialCount
	}
	if !currentRange.contains(count) {
		panic("counter: InitialCount must be within InitialRange")
	}

	if b.step == nil {
		panic("counter: Step must be set")
	}

	return counter{
		fullRange:           fullRange,
		currentRange:        currentRange,
		wraps:               wraps,
		step:                *b.step,
		autoTriggeredBy:     autoTriggeredBy,
		whenDisabledPrevent: whenDisabledPrevent,
		prescaler:           b.prescaler,
		triggeringEnabled:   false,
		countingEnabled:     countingEnabled,
		count:               count,
	}
}

// BuildDirectlySet finalizes the builder into a DirectlySetCounter: one
// whose count can be mutated directly and that never force-reloads.
func (b *Builder) BuildDirectlySet() *DirectlySetCounter {
	if b.forcedReloadTiming != nil {
		panic("counter: DirectlySetCounter must not configure ForcedReloadTiming")
	}
	if b.initialRange != nil {
		panic("counter: DirectlySetCounter must only use FullRange, not InitialRange")
	}
	c := b.build()
	return &DirectlySetCounter{c: c}
}

// BuildReloadDriven finalizes the builder into a ReloadDrivenCounter: one
// whose count is only mutated by (forced or automatic) reload.
func (b *Builder) BuildReloadDriven() *ReloadDrivenCounter {
	if b.forcedReloadTiming == nil {
		panic("counter: ReloadDrivenCounter requires ForcedReloadTiming to be set")
	}
	c := b.build()
	if b.triggerOnForcedReloadWithTargetCount && c.autoTriggeredBy.kind == autoTriggerWrapping {
		panic("counter: AlsoTriggerOnForcedReloadWithTargetCount is incompatible with AutoTriggerWhen Wrapping")
	}
	return &ReloadDrivenCounter{
		c:                                    c,
		forcedReloadTiming:                   *b.forcedReloadTiming,
		triggerOnForcedReloadWithTargetCount: b.triggerOnForcedReloadWithTargetCount,
	}
}
