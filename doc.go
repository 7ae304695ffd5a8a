/*
Package entitybind binds function parameters to document collections.

A function declares, per parameter, where its value comes from or goes to. The Host
indexes those declarations once, at registration, and rejects illegal combinations
before anything runs. Each invocation then resolves the declared templates against the
trigger payload and the application settings, obtains a shared document service for the
resolved connection string and performs the read, query or upsert.

The library follows a register → invoke workflow:
  - Register: shapes are computed, attributes validated, templates compiled and
    connection strings resolved
  - Invoke: templates are rendered, documents read or queried, the handler runs, and
    outputs are upserted

Key Features:
  - Point reads by id and optional partition key
  - Parameterized queries with {Field} tokens turned into named parameters
  - Output slots, collectors and async collectors
  - Pluggable backends (DynamoDB, MongoDB, in-memory) selected by connection string
  - File triggers with path patterns feeding binding data
  - Semantic error types for indexing and invocation failures

Basic Usage:

	host := entitybind.New(entitybind.WithSettings(config.Env{}))
	defer host.Close()

	err := host.Register(entitybind.Function{
		Name: "CopyItem",
		Params: []binding.Parameter{
			binding.Input[storagemodels.Document]("item", binding.Attribute{
				DatabaseName:   "ItemDb",
				CollectionName: "ItemCollection",
				ID:             "{QueueTrigger}",
			}),
			binding.Output[storagemodels.Document]("copy", binding.Attribute{
				DatabaseName:   "ItemDb",
				CollectionName: "ItemCopies",
			}),
		},
		Handler: func(ctx context.Context, call *entitybind.Call) error {
			item := call.Value("item").(storagemodels.Document)
			*call.Value("copy").(*storagemodels.Document) = item
			return nil
		},
	})

	err = host.Call(ctx, "CopyItem", "docid1")

Connection strings come from the binding's ConnectionStringSetting, then the configured
default, then the DocumentDBConnectionString setting.
*/
package entitybind
