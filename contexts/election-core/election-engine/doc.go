// Package electionengine implements the Election Engine inside the
// election-core context.
//
// The module owns the single-election lifecycle (setup, voting, closed),
// candidate and voter registration, ballot casting with single-hop or chained
// delegation, tally and winner reads, and election event production and
// consumption through outbox-backed workers. It keeps business rules in the
// application and domain layers and isolates infrastructure concerns behind
// ports and adapters.
package electionengine
