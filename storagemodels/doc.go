/*
Package storagemodels defines the data structures shared by the binding providers
and the document service backends.

Key Types:

Document:
An opaque structured record identified by its "id" property:

	doc := storagemodels.Document{"id": "docid1", "partitionKey": "pk1", "text": "hello"}
	doc.ID() // "docid1"

PartitionKey:
A routing value. A nil *PartitionKey means the request carries no key at all:

	pk := storagemodels.NewPartitionKey("partkey3")
	pk.String() // `["partkey3"]`

QuerySpec:
A query text with ordered named parameters:

	q := storagemodels.QuerySpec{
	    Text:       "SELECT * FROM c WHERE c.id = @QueueTrigger",
	    Parameters: []storagemodels.QueryParameter{{Name: "@QueueTrigger", Value: "docid1"}},
	}

StreamResult:
Results from paginated query streaming with metadata:

	type StreamResult[T any] struct {
	    Item  T          // The decoded item
	    Error error      // Item-specific error, if any
	    Meta  StreamMeta // Metadata about this item
	}

These types provide a consistent interface across the DynamoDB, MongoDB and memory backends.
*/
package storagemodels
