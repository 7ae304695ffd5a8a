/*
Package registry maps connection string providers to document service constructors.

Backends register themselves from init(), the same way database/sql drivers do, so a
binary only links the backends it imports:

	import _ "github.com/suparena/entitybind/datastore/ddb"   // registers "dynamodb"
	import _ "github.com/suparena/entitybind/datastore/mongo" // registers "mongodb"
	import _ "github.com/suparena/entitybind/datastore/mock"  // registers "memory"

The registry Factory parses a connection string and dispatches on its provider:

	factory := registry.NewFactory()
	svc, err := factory.CreateService(ctx, "Provider=dynamodb;Region=us-east-1;Table=docs")

The registry is thread-safe and should be populated during initialization.
*/
package registry
