// Package models defines the persisted entities of the hbnb application and the
// contract they share.
//
// Every entity embeds [Base], which carries an opaque identifier and the
// creation and update timestamps. Identifiers are assigned exactly once, by a
// [Factory], when the entity is constructed; callers never choose them.
//
// # Records
//
// [ToMap] exports an entity as a plain record: every public field under its
// wire name, the two timestamps rendered with [TimeFormat], and a "__class__"
// key naming the concrete type. [Factory.FromMap] reverses it, so that
//
//	e2, _ := f.FromMap(models.ToMap(e1))
//
// yields an entity with the same id, timestamps and field values. This record
// layout is the on-disk format of the flat file engine and must stay
// compatible with data written by earlier versions.
//
// # Relations
//
// Parent/child traversals such as [State.Cities] are views recomputed on every
// call. Engines that implement [RelationResolver] answer them with a join;
// for all others the full collection of the child kind is scanned and filtered
// by foreign key, which is O(n) per access.
//
// # Persistence
//
// Entities do not hold a reference to a storage engine. [Save] and [Delete]
// take the engine explicitly:
//
//	city := f.NewCity()
//	city.Name = "Springfield"
//	if err := models.Save(ctx, store, city); err != nil {
//		return err
//	}
package models
