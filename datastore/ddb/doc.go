/*
Package ddb implements datastore.Driver on a single DynamoDB table.

Every logical table is one partition. Keys are derived from macro templates that are
replaced with document field values:

	keys := map[string]string{
	    "PK": "TABLE#{_table}",      // Becomes "TABLE#posts"
	    "SK": "{createdAt}#{id}",    // Creation order inside the partition
	}

Reads query the partition page by page. The filter is translated into a DynamoDB filter
expression that narrows the items read, and the exact filter runs on the decoded items,
so matching follows the same rules as every other driver:

	expr, _ := ddb.BuildFilter(filter.Eq("status", "published"), nil)
	// (#n0 = :v0 OR contains(#n0, :v0))

Sorting and windowing happen after the partition is read. Transactions switch reads to
strongly consistent mode; DynamoDB has no read snapshots.
*/
package ddb
