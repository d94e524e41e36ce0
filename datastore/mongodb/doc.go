/*
Package mongodb implements datastore.Driver on MongoDB with the official Go driver.

Collections are named after slugs. Globals share the "globals" collection and are told
apart by their "globalType" field; version collections are named "_<slug>_versions".
Filters are translated into query documents:

	q, _ := mongodb.BuildQuery(filter.All(filter.Eq("status", "published"), filter.Eq("globalType", "settings")))
	// {"$and": [{"status": {"$eq": "published"}}, {"globalType": {"$eq": "settings"}}]}

Transactions are client sessions running with snapshot read concern, so every read of one
retrieval sees the same data. They need a replica set or sharded cluster.
*/
package mongodb
