/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package template_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/entitybind/errors"
	"github.com/suparena/entitybind/storagemodels"
	"github.com/suparena/entitybind/template"
)

type settings map[string]string

func (s settings) Lookup(name string) (string, bool) {
	v, ok := s[name]
	return v, ok
}

type order struct {
	OrderID  string `json:"orderId"`
	Region   string
	Customer customer
}

type customer struct {
	Name string `json:"name"`
}

type fileEvent struct{ captures map[string]any }

func (f fileEvent) BindingData() map[string]any { return f.captures }

func TestRenderScalarPayload(t *testing.T) {
	cfg := settings{"Query": "ResolvedQuery"}

	got, err := template.Resolve("some %Query% with '{QueueTrigger}' replacements", "docid1", cfg)
	require.NoError(t, err)
	assert.Equal(t, "some ResolvedQuery with 'docid1' replacements", got)

	// the token name is irrelevant for a scalar payload
	got, err = template.Resolve("{anything}", "docid1", nil)
	require.NoError(t, err)
	assert.Equal(t, "docid1", got)

	_, err = template.Resolve("{a.b}", "docid1", nil)
	assert.True(t, errors.IsBindingResolution(err))
}

func TestRenderStructuredPayload(t *testing.T) {
	payload := order{OrderID: "o-1", Region: "west", Customer: customer{Name: "ann"}}

	tests := []struct {
		name     string
		tmpl     string
		expected string
	}{
		{name: "json tag", tmpl: "{orderId}", expected: "o-1"},
		{name: "case insensitive", tmpl: "{OrderId}", expected: "o-1"},
		{name: "untagged field", tmpl: "{Region}", expected: "west"},
		{name: "nested path", tmpl: "{Customer.name}", expected: "ann"},
		{name: "multiple tokens", tmpl: "{Region}-{orderId}", expected: "west-o-1"},
		{name: "literal only", tmpl: "plain", expected: "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := template.Resolve(tt.tmpl, &payload, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRenderMapAndProviderPayloads(t *testing.T) {
	got, err := template.Resolve("{id}/{n}", map[string]any{"id": "x", "n": 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, "x/3", got)

	got, err = template.Resolve("{id}", storagemodels.Document{"id": "doc"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "doc", got)

	got, err = template.Resolve("{name}.csv", fileEvent{captures: map[string]any{"name": "report"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "report.csv", got)

	got, err = template.Resolve("{items}", map[string]any{"items": []any{"a", "b"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, got)
}

func TestRenderFailures(t *testing.T) {
	_, err := template.Resolve("{missing}", map[string]any{"id": "x"}, nil)
	assert.True(t, errors.IsBindingResolution(err))

	_, err = template.Resolve("%Missing%", nil, settings{})
	assert.True(t, errors.IsBindingResolution(err))

	_, err = template.Resolve("%Missing%", nil, nil)
	assert.True(t, errors.IsBindingResolution(err))

	_, err = template.Resolve("{missing}", nil, nil)
	assert.True(t, errors.IsBindingResolution(err))

	_, err = template.Compile("{a..b}")
	assert.True(t, errors.IsValidationError(err))
}

func TestLiteralBracesAndPercents(t *testing.T) {
	got, err := template.Resolve(`{"status": "@status"} 50% off`, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"status": "@status"} 50% off`, got)
}

func TestNilTemplate(t *testing.T) {
	tmpl, err := template.CompileOptional("")
	require.NoError(t, err)
	assert.Nil(t, tmpl)
	assert.False(t, tmpl.IsSet())

	got, err := tmpl.Render("payload", nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	q, err := tmpl.RenderQuery("payload", nil)
	require.NoError(t, err)
	assert.Empty(t, q.Text)
	assert.Empty(t, tmpl.FieldNames())
}

func TestRenderQuery(t *testing.T) {
	cfg := settings{"Query": "ResolvedQuery"}
	tmpl := template.MustCompile("some %Query% with '{QueueTrigger}' replacements")

	q, err := tmpl.RenderQuery("docid1", cfg)
	require.NoError(t, err)
	assert.Equal(t, "some ResolvedQuery with '@QueueTrigger' replacements", q.Text)
	assert.Equal(t, []storagemodels.QueryParameter{{Name: "@QueueTrigger", Value: "docid1"}}, q.Parameters)
	assert.Equal(t, "some ResolvedQuery with 'docid1' replacements", q.Expand())

	t.Run("repeated and nested tokens", func(t *testing.T) {
		tmpl := template.MustCompile("SELECT * FROM c WHERE c.region = {Customer.Region} AND (c.a = {Id} OR c.b = {Id})")
		q, err := tmpl.RenderQuery(map[string]any{"Id": 7, "Customer": map[string]any{"Region": "west"}}, nil)
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM c WHERE c.region = @Customer_Region AND (c.a = @Id OR c.b = @Id)", q.Text)
		assert.Equal(t, []storagemodels.QueryParameter{
			{Name: "@Customer_Region", Value: "west"},
			{Name: "@Id", Value: 7},
		}, q.Parameters)
		assert.Equal(t, []string{"Customer.Region", "Id", "Id"}, tmpl.FieldNames())
	})

	t.Run("unresolved token", func(t *testing.T) {
		_, err := template.MustCompile("{nope}").RenderQuery(map[string]any{}, nil)
		assert.True(t, errors.IsBindingResolution(err))
	})
}

func TestMustCompilePanics(t *testing.T) {
	assert.Panics(t, func() { template.MustCompile("{a.}") })
	assert.Equal(t, "@a_b", template.ParameterName("a.b"))
	assert.Equal(t, "{a}", template.MustCompile("{a}").String())
}
