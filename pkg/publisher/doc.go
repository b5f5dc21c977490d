// Package publisher fans notifications out to connected clients through one
// of two interchangeable strategies.
//
// BusPublisher rides a pub/sub bus: Publish serializes an envelope and puts
// it on the bus, and the actual client pushes happen in the subscription
// handler on every instance, the origin included. That single code path is
// what lets each instance reach its own locally-connected clients. Bus
// faults never surface as errors from Publish; they come back as a Degraded
// result and the delivery stays Pending for polling pickup.
//
// PollingPublisher is the no-bus fallback: Publish calls are no-ops and
// clients pull their pending delivery records. PollTracker suppresses
// re-reporting the same (user, notification) pair inside a short sliding
// window, since polling has no delivery acknowledgment.
//
// Which strategy runs is a deployment-time choice; both satisfy Publisher,
// so callers never branch on the mode.
package publisher
