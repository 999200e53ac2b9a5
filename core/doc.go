// Package core defines the shared data model threaded through every part of
// Localmind: role-tagged conversation messages, the mutable Run State carried
// between graph nodes, tool call records, run descriptors and the failure
// taxonomy used by tool adapters and the inference client.
//
// The package is deliberately free of orchestration logic; packages graph,
// assistant and boundary build behavior on top of these types.
package core
