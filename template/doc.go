/*
Package template resolves the placeholders found in binding attribute strings.

Two token forms are supported:

	{Field}   replaced by a field of the trigger payload ("{Order.Id}" walks nested records)
	%Name%    replaced by a named application setting

A scalar payload (for example a queue message string) answers any single unqualified
token, so "{QueueTrigger}" resolves to the message itself:

	t := template.MustCompile("some %Query% with '{QueueTrigger}' replacements")
	s, _ := t.Render("docid1", settings) // "some ResolvedQuery with 'docid1' replacements"

For queries, RenderQuery keeps payload values out of the query text and returns them
as named parameters instead:

	q, _ := t.RenderQuery("docid1", settings)
	// q.Text       == "some ResolvedQuery with '@QueueTrigger' replacements"
	// q.Parameters == [{@QueueTrigger docid1}]

Templates are compiled once when a function is indexed and rendered per invocation.
*/
package template
