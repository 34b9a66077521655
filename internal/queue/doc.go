// Package queue provides the speech queue shared by callers and the
// playback worker: an unbounded FIFO with blocking Get, a head-inserted
// stop marker for shutdown, and task bookkeeping (Done/Join) so callers
// can wait for the queue to drain.
package queue
