// Package snapshot saves and restores the contents of a store.Cache.
//
// A Snapshot is a JSON document listing every captured entry. Backends
// persist snapshots by name on local disk or in S3:
//
//	backend, _ := snapshot.NewDiskBackend("/var/lib/vcache")
//	if err := snapshot.Save(ctx, backend, "nightly", c); err != nil { ... }
//
//	// later, possibly in another process
//	if err := snapshot.Load(ctx, backend, "nightly", c); err != nil { ... }
//
// Restore writes through Cache.Set inside a single transaction, so bound
// consumers re-render once after the whole snapshot is applied. Restored
// values are the JSON decoding of the captured ones (maps, slices,
// float64, string, bool, nil), not the original Go types.
package snapshot
