// Package notifier orchestrates notification delivery end to end.
//
// Send persists the notification, evaluates each recipient's preferences,
// creates one delivery record per accepted channel, and routes the work:
// push deliveries go to the publisher, email deliveries are rendered and
// inserted into the durable email queue. A push delivery is marked Delivered
// only when the publisher reports real-time availability; otherwise it stays
// Pending and reaches the client through Pending polls, de-duplicated by an
// optional PollTracker. One recipient's failure never aborts the rest of a
// batch.
package notifier
