// Package database manages the MySQL connection used by the merge
// history catalog. The connection is optional: the merge engine itself
// never touches a database, and all commands keep working without one.
package database
