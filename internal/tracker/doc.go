// Package tracker implements the mention-tracking core: the tiered traversal
// scheduler, the symbol validator, and the collaborator contracts (fetcher,
// parser, extractor, stores) the scan pipeline is composed from.
package tracker
