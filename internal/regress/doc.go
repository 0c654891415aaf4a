// Package regress keeps golden geometry snapshots and checks
// synthesized cells against them. Snapshots are canonical cell JSON,
// one file per cell, so a geometry change reviews as a plain text
// diff. Runs are journaled to a SQLite database for history queries.
package regress
