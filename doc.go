// Package reviso provides a suspendable content-generation engine.
//
// A task runs a fixed research → draft → critique graph: the draft is
// critiqued and refined in a bounded loop, then the run suspends until a
// human approves, rejects or feeds back on the result. Rejections and
// feedback restart the refine loop; approval completes the task. The engine
// comes with pluggable service layers:
//
//   - registry  – task lifecycle and verdict handling
//   - executor  – forward passes over the content graph
//   - processor – worker pool draining the scheduling queue
//   - approval  – human-in-the-loop verdicts with an event queue
//   - content   – the text-generation collaborator
//
// Reviso is designed to be embedded in host applications. End-users
// typically interact with the engine via the high-level Service façade
// exposed by the root package:
//
//	srv := reviso.New()
//	rt := srv.Runtime()
//	_ = rt.Start(ctx)
//	id, _ := rt.CreateTask(ctx, "post about our coffee shop opening")
//	events, _ := rt.RunTask(ctx, id)
//	for range events {
//	}
//	snapshot, _ := rt.SubmitVerdict(ctx, id, approval.Approve())
//
// For more details see the README and individual sub-packages.
package reviso
