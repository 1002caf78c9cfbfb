// Package dispatch matches reported fires to resource units. It provides a
// greedy single-pass strategy, an exact strategy built on a binary program,
// the run manager orchestrating them day by day and the final report
// aggregation.
package dispatch
