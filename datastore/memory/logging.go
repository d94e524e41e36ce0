/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package memory

// Log messages.
const (
	logMsgFind  = "memory find executed"
	logMsgBegin = "memory snapshot taken"
)

// Log attribute keys.
const (
	logAttrTable   = "table"
	logAttrMatched = "matched"
	logAttrTables  = "tables"
)
