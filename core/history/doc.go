// Package history records completed merge runs in the database.
//
// Each run stores the snapshot names involved, the action and conflict
// counts, and whether the actions were applied. The store is optional:
// callers without a database connection simply skip it.
package history
