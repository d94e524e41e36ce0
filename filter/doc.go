// Package filter defines the storage-neutral query filter of contentstore and the query
// composer that merges caller filters with system-mandated constraints.
//
// A Where is a tree of comparison leaves combined with And/Or nodes. Storage drivers
// translate it into their own query language (BSON, SQL via goqu, DynamoDB filter
// expressions) or evaluate it directly with Match.
//
//	caller, _ := filter.FromMap(map[string]any{"status": map[string]any{"equals": "published"}})
//	where := filter.Compose(caller, filter.Eq("globalType", "settings"))
//	// where == And(status equals "published", globalType equals "settings")
//
// Compose never mutates its inputs and constraints are always ANDed in, so caller input
// cannot widen a system constraint.
package filter
