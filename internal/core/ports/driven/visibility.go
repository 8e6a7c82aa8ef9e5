package driven

// VisibilityObserver reports when a designated sentinel (the end of a
// rendered list) becomes visible in a scroll viewport.
type VisibilityObserver interface {
	// Observe registers onVisible and returns a function that cancels the
	// registration. onVisible may be called any number of times until then.
	Observe(onVisible func()) (cancel func())
}
