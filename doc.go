// Package scopecache is a generational, scope-versioned response cache for a
// command/query pipeline. Reads are memoized under keys that embed the current
// version of every scope they depend on; writes invalidate by bumping those
// versions, so stale entries are never enumerated or deleted, they just stop
// being addressed and age out via TTL.
//
// Components:
//   - Provider: byte store with TTL (Redis, Ristretto, BigCache).
//   - Store[V]: codec + framing + namespace over a Provider.
//   - VersionStore: atomic named counters (Redis, or Local for one process).
//   - ReadThrough / Invalidate: pipeline behaviors for queries and commands.
//
// Keys:
//
//	<ns><tag>:<hash>:<scope>-v<n>[:<scope>-v<n>]  - versioned query
//	<ns><tag>:<hash>:v0                           - versioned query without scopes
//	<ns><key>                                     - plain Cacheable query
//	<ns><scope>                                   - version counter (Redis)
//
// Requests opt in by implementing VersionedCacheable (or Cacheable) for reads,
// and VersionBumping (or Invalidating) for writes:
//
//	c, _ := scopecache.New(scopecache.Options{Provider: p, Versions: vs})
//	rt, _ := scopecache.NewReadThrough[GetProducts, Page](c, codec.JSON[Page]{})
//	inv, _ := scopecache.NewInvalidate[CreateProduct, Product](c)
//	list := pipeline.Chain(listHandler, pipeline.Behavior[GetProducts, Page](rt))
//	create := pipeline.Chain(createHandler, pipeline.Behavior[CreateProduct, Product](inv))
//
// There is no single-flight: concurrent misses for one key all run the handler.
package scopecache
