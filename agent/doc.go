// Package agent implements the query routing and answer synthesis pipeline.
//
// A Graph runs one query through four stages:
//
//	ROUTING -> RETRIEVING -> GENERATING -> DONE
//
// The Router classifies the query as a catalog question or a web question,
// falling back to a keyword heuristic when the model reply is not a valid
// route. Exactly one retrieval stage runs: catalog passages for RouteCourse,
// web results for RouteWeb. The Generator renders the evidence into a
// source-tagged context block and asks the language model for a grounded,
// cited answer.
//
// Citation fidelity is a prompt contract. The answer is returned as the
// model produced it (trimmed); citations are not checked against the
// evidence.
//
// Shared clients are resolved through Resources, which initializes each
// client on first use and memoizes it for the life of the process.
package agent
