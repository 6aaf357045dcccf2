// Package model projects computing-resource needs of a scientific
// collaboration over a range of years.
//
// # Engines
//
// Parameters are loaded from layered JSON or YAML documents (Load) and then
// evaluated by a chain of engines, each depending only on the ones before it:
//
//   - Calendar: shutdown years and the last active year before them.
//   - EventsModel: real and simulated events per year and kind.
//   - PerformanceModel: per-event processing cost and output size.
//   - CPUModel: processing time and rate per category, followed by named
//     post-processing passes (accumulating analysis, shutdown recovery).
//   - StorageModel: disk and tape occupancy by producing year and tier.
//   - Aggregate: totals, HPC-eligible subtotal and distributed-computing shares.
//
// Capacity is projected independently by the capacity package. Run evaluates
// everything and returns a Projection.
//
// # Units
//
// Processing rates are HS06, processing time HS06*s, sizes bytes. Matrices
// of the storage engine are in PB.
package model
