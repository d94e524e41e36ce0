/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongodb

// Log messages.
const (
	logMsgFind  = "mongodb find"
	logMsgBegin = "mongodb session started"
)

// Log attribute keys.
const (
	logAttrCollection = "collection"
	logAttrQuery      = "query"
	logAttrSession    = "session"
)
