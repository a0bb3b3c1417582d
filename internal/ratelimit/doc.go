// Package ratelimit counts requests per client and endpoint in fixed
// windows.
//
// A Limiter is constructed once at process start and handed to the HTTP
// layer. Run sweeps expired windows until its context is cancelled; the
// sweep and Allow share one mutex, so a sweep never drops a key that an
// in-flight Allow is about to increment.
package ratelimit
