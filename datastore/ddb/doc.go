/*
Package ddb provides a DynamoDB implementation of datastore.Service.

All collections share one table (single-table design). A document becomes an item keyed by

	PK = "{database}/{collection}/{id}"
	SK = "{partition key wire form}"   // ["partkey3"], or [] without a key

plus a Collection attribute holding "{database}/{collection}". These attributes are
removed from documents read back.

Operations:
  - ReadDocument: GetItem with a partition key, otherwise a Query on PK that must match one item
  - UpsertDocument: PutItem
  - ReplaceDocument: PutItem conditioned on attribute_exists(PK)
  - ExecuteQueryPage: PartiQL ExecuteStatement, NextToken as continuation
  - EnsureCollection: creates the table (PAY_PER_REQUEST) when missing

Queries are written against a collection alias and rewritten for the table:

	SELECT * FROM c WHERE c.status = @status   // becomes
	SELECT * FROM "documents" WHERE status = ?

String literals are left as written, so 'bob@example.com' is not a parameter. A literal
holding only a parameter, such as '@id', is sent as a positional parameter.

A partition key path passed to EnsureCollection applies to later writes into that collection;
otherwise the PartitionKeyPath of the connection string is used.

The package registers the "dynamodb" provider on import:

	import _ "github.com/suparena/entitybind/datastore/ddb"

	Provider=dynamodb;Region=us-east-1;Table=documents;Endpoint=http://localhost:8000
*/
package ddb
