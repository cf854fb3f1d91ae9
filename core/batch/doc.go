// Package batch runs many independent operations against rate-limited APIs.
//
// Items are split into chunks of a fixed size. Each chunk runs concurrently and the
// next chunk starts only after every operation of the current one has finished and
// a pacing delay has elapsed. Failures never cancel siblings: every item gets a
// Result, in input order, so callers can zip results back to their inputs.
//
// # Usage
//
//	results := batch.ProcessInBatches(ctx, events, batch.Options{Size: 5, Delay: time.Second},
//	    func(ctx context.Context, ev reconcile.CalendarEvent) (string, error) {
//	        return client.CreateEvent(ctx, calendarID, ev)
//	    })
//	for i, r := range results {
//	    if r.Err != nil { ... events[i] failed ... }
//	}
package batch
