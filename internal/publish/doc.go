// Package publish fans dashboard events out to Redis.
//
// RedisPublisher is a dashboard.Observer. Notifications are encoded and
// queued without blocking the dashboard loop; a background loop flushes
// them in batches through one pipeline per flush:
//
//	PUBLISH <prefix>:price.<SYM>    price update
//	SET     <prefix>:price:<SYM>    latest price update (with TTL)
//	PUBLISH <prefix>:movers         top movers
//	SET     <prefix>:movers         latest top movers (with TTL)
//	PUBLISH <prefix>:anomaly        anomaly detected
//	PUBLISH <prefix>:alerts         alert recorded
//	PUBLISH <prefix>:connectivity   stream connectivity
//
// When the pending queue is full the oldest events are dropped.
package publish
