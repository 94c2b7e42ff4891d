// Package registry provides a generic thread-safe store mapping string tags to
// owned values of one resource category.
//
// A Registry never overwrites: inserting a tag that is already present fails
// with ErrDuplicate and leaves the stored value untouched. Callers that want a
// different value under the same tag must Remove it first.
//
// # Basic Usage
//
//	meshes := registry.New[*Mesh]("mesh")
//	if err := meshes.Insert("quad", quad); err != nil {
//	    // errors.Is(err, registry.ErrDuplicate)
//	}
//
//	m, ok := meshes.Get("quad")
//
// # Teardown
//
// Drain empties the registry and hands back everything it held, so the owner
// can release GPU handles, buffers or file descriptors in one place:
//
//	for _, e := range meshes.Drain() {
//	    release(e.Value)
//	}
//
// # Thread Safety
//
// All methods are safe for concurrent use. The registry is tuned for the
// read-mostly access pattern of a render loop: lookups take a read lock,
// inserts take a write lock. Range iterates over a snapshot, so callbacks may
// call Insert or Remove without deadlocking.
package registry
