// Package redis connects the notification engine to the Redis server that
// carries its pub/sub fan-out bus. Connect retries within a bounded window
// so a Redis still starting up does not force polling mode unnecessarily.
package redis
