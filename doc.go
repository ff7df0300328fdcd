// Package event provides a normalized mechanism for listening to and emitting
// events across heterogeneous event sources.
//
// A target is classified once, when it is first supplied, into one of three
// kinds:
//   - DOM: anything with AddEventListener/RemoveEventListener (see package dom)
//   - Emitter: Node-style On/RemoveListener/Emit (see package emitter and its
//     Redis, NATS and Kafka adapters)
//   - Evented: objects embedding Evented, which keep one listener per type
//
// Every registration returns a Handle whose Destroy removes the listener.
// Destroy is idempotent: only the first call has an effect.
//
// Basic example:
//
//	doc := dom.NewDocument()
//	button := doc.CreateElement("button")
//
//	h, err := event.On(button, "click", func(ev event.Event) {
//	    fmt.Println("clicked")
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Destroy()
//
//	prevented, err := event.Emit(button, event.NewObject("click", nil))
//
// Multiple event types share one handle:
//
//	h, err := event.OnAll(ee, []string{"open", "close"}, listener)
//
// Wrappers:
//   - Once: the listener fires at most one time, then unregisters itself
//   - Pausable: delivery can be paused and resumed without unregistering
//   - Throttle: deliveries above a rate limit are dropped. ThrottleWith takes
//     any ratelimit.Limiter, including a Redis window shared by processes.
//
// Package-level functions use the default Binder. A Binder can be created with
// NewBinder to configure logging, tracing and metrics:
//   - WithLogger: set the slog logger
//   - WithTracing: enable/disable OpenTelemetry spans for Emit. Default is true.
//   - WithMetrics: enable/disable OpenTelemetry listener metrics. Default is true.
package event
