// Package session tracks read transactions by id so that every storage call of one
// retrieval, such as the count and the find of a paginated query, runs in the same
// transaction. Requests without a transaction id read in auto-commit mode.
package session
