// Package events defines the allocation events emitted on the event bus.
//
// Available event types:
//   - AssignmentEvent: resource unit committed to an incident
//   - MissedFireEvent: incident left unserved, with its damage cost
//   - DaySolvedEvent: one day's batch finished (or failed)
//   - RunCompletedEvent: final report for a run
package events
