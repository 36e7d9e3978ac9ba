// Package mboxcache holds delivered content units in two tiers.
//
// The prefetched tier keeps the full server record for units requested ahead
// of need. The loaded tier keeps a reduced record (name and metrics) for units
// loaded on demand, which is enough to report later clicks. A unit present in
// the prefetched tier is never stored in the loaded tier.
package mboxcache
