// Package votingcore implements the anonymous, verifiable voting core inside
// the governance context.
//
// Voters commit to a vote value on their own machine with a passphrase that
// never reaches the server. The server stores the digest, keeps per-article
// tallies consistent across first votes and vote changes, and moves each
// article through its lifecycle: duration vote, debate, final vote and
// resolution. Lifecycle transitions are pure functions of the stored state and
// the clock, applied by a worker sweep or lazily by readers through the same
// use case, with mutual exclusion left to the storage layer.
package votingcore
