// Package sanitize turns raw documents returned by a storage driver into results:
// the driver's identifier field is renamed to "id" and internal fields such as
// "__v", "salt" and "hash" are dropped. Sanitizing works on a deep copy, so results
// never alias driver storage.
package sanitize
