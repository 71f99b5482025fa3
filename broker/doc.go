// Package broker transfers surface handles between processes. A producer
// exports a handle and receives an opaque token; the token travels inside a
// surface.Ref through whatever backend channel raised the notification, and
// the consuming side resolves it back into a handle.
//
// Two resolution paths implement resolver.Lookup:
//
//   - Broker itself, for consumers in the exporting process: Resolve returns
//     the exported handle directly, so identity is trivially preserved.
//   - Client, for consumers in another process: Resolve calls the broker's
//     Connect RPC endpoint, opens the shared region locally, and caches the
//     result per token so repeated lookups return the same handle.
//
// The RPC surface is a single unary procedure built from protobuf well-known
// types; there is no generated service code to keep in sync.
package broker
