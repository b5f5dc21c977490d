// Package emailqueue implements durable, multi-instance-safe email dispatch
// for notifications.
//
// Emails are rendered and inserted as Pending entries at enqueue time, then
// claimed and sent by background workers. The claim is a single atomic
// conditional update against the backing store, so any number of worker
// instances can run concurrently without a distributed lock: a row is won by
// exactly one worker, and rows held by a crashed worker become reclaimable
// once their five-minute lease goes stale.
//
// Failed sends re-enter the claim cycle through a periodic retry sweep,
// bounded by a per-entry retry budget. Within a claim batch, high-priority
// entries are preferred over normal ones, then earliest scheduled first.
//
//	storage := emailqueue.NewMemoryStorage()
//	coordinator, _ := emailqueue.NewCoordinator(storage, engine, sender, deliveries)
//	worker, _ := emailqueue.NewWorker(coordinator)
//	worker.Start(ctx)
//	defer worker.Stop()
package emailqueue
