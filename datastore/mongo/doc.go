/*
Package mongo provides a MongoDB implementation of datastore.Service.

Database and collection names map directly to MongoDB databases and collections. The
document id is stored as _id and restored on read.

Queries are relaxed extended JSON filter documents rather than SQL. A string value that is
exactly a parameter reference is replaced by the bound value:

	{"status": "@status", "total": {"$gt": 10}}

Pages are ordered by _id; the continuation token is the number of documents already
returned.

The package registers the "mongodb" provider on import:

	import _ "github.com/suparena/entitybind/datastore/mongo"

	mongodb://localhost:27017/?partitionKeyPath=/pk&pageSize=50

Pool and retry settings are read from MONGODB_CONNECT_TIMEOUT, MONGODB_MAX_POOL_SIZE,
MONGODB_MIN_POOL_SIZE, MONGODB_MAX_CONN_IDLE_TIME, MONGODB_RETRY_ATTEMPTS,
MONGODB_RETRY_INTERVAL and MONGODB_QUERY_PAGE_SIZE.
*/
package mongo
