/*
Package filetrigger starts functions when files change.

A function declares one input parameter with an Attribute whose Path is
"directory/filenamePattern" relative to the listener root:

	binding.Input[filetrigger.Event]("file", filetrigger.Attribute{
		Path:        "import/{name}.csv",
		ChangeTypes: filetrigger.Created | filetrigger.Changed,
		AutoDelete:  true,
	})

The parameter may be an Event, *Event, string (file contents), []byte or fs.FileInfo.
Registering the Provider with the host makes these parameters bindable:

	host := entitybind.New(entitybind.WithProvider(filetrigger.NewProvider()))

A Listener watches the declared directories, waits until a file has been quiet for the
debounce interval and calls every function whose pattern and change types match. The
event is the invocation payload, so pattern captures resolve in document templates:

	binding.Output[storagemodels.Document]("row", binding.Attribute{
		DatabaseName: "Imports", CollectionName: "Files", ID: "{name}",
	})
*/
package filetrigger
