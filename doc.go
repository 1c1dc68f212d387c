// Package session implements the account and session lifecycle for the
// JobConnect job marketplace: sign-up, sign-in, sign-out, role selection
// (worker or employer) and role-dependent profile management.
//
// The Manager is the single source of truth for "who is using the app right
// now". It drives a small state machine (Unknown -> Anonymous <->
// Authenticated), delegates credential handling to an IdentityProvider, and
// re-materializes the Role and Profile for a user id on every authenticated
// transition. Consumers subscribe to immutable Snapshots and receive
// user-facing notifications through the Notifier side channel.
//
// The provider/local subpackage offers a production-shaped local identity
// provider backed by bun repositories; provider/jwks validates access tokens
// issued by external identity providers.
package session
