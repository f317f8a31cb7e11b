// Package engine runs a structured LLM call end to end: the remote call goes
// through the retrier, the raw text through the recovery chain, and the
// recovered mapping through the record assembler. The caller always gets a
// fully populated record unless the remote call itself failed with a fatal
// error or the context was cancelled.
//
//	eng := engine.New(mistral.New(), engine.WithObserver(slogobs.New()))
//	out, err := eng.Run(ctx, engine.Request{Chat: chat, Schema: schema})
//	if errors.Is(err, retry.ErrFatal) {
//		// auth failure, bad request, 5xx
//	}
//	score := out.Record.Number("overallScore")
package engine
