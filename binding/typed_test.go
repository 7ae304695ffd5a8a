/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package binding_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/entitybind/binding"
	"github.com/suparena/entitybind/datastore/mock"
	"github.com/suparena/entitybind/datastore/testmodels"
	"github.com/suparena/entitybind/storagemodels"
)

func TestTypedDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("ReadIntoGeneratedModel", func(t *testing.T) {
		svc := mock.New()
		svc.SetData(items, storagemodels.Document{
			"id":        "elo",
			"name":      "Elo",
			"createdAt": "2025-03-01T10:00:00.000Z",
			"siteUrl":   "https://example.com/elo",
		})
		env, _ := newEnv(svc)

		d, err := binding.Build(binding.Input[*testmodels.RatingSystem]("rating", nil), binding.Attribute{
			DatabaseName: "ItemDb", CollectionName: "ItemCollection", ID: "{QueueTrigger}",
		}, env)
		require.NoError(t, err)
		assert.Equal(t, binding.ShapeTyped, d.Shape().Kind)

		v, err := d.Bind(ctx, "elo")
		require.NoError(t, err)
		rating := v.Get().(*testmodels.RatingSystem)
		require.NoError(t, rating.Validate())
		assert.Equal(t, "Elo", *rating.Name)
		assert.Equal(t, "2025-03-01T10:00:00.000Z", rating.CreatedAt.String())
	})

	t.Run("UpsertGeneratedModel", func(t *testing.T) {
		svc := mock.New()
		env, _ := newEnv(svc)
		d, err := binding.Build(binding.Output[testmodels.RatingSystem]("rating", nil), binding.Attribute{
			DatabaseName: "ItemDb", CollectionName: "ItemCollection",
		}, env)
		require.NoError(t, err)

		v, err := d.Bind(ctx, nil)
		require.NoError(t, err)
		rating, err := testmodels.NewRatingSystem("glicko", "Glicko", "2025-03-02T08:30:00Z")
		require.NoError(t, err)
		*v.Get().(*testmodels.RatingSystem) = *rating
		require.NoError(t, v.Complete(ctx))

		upserts := svc.Upserts()
		require.Len(t, upserts, 1)
		assert.Equal(t, "glicko", upserts[0].Document.ID())
		assert.Equal(t, "Glicko", upserts[0].Document["name"])
		assert.Equal(t, "2025-03-02T08:30:00.000Z", upserts[0].Document["createdAt"])
	})

	t.Run("InvalidModel", func(t *testing.T) {
		_, err := testmodels.NewRatingSystem("x", "X", "yesterday")
		assert.Error(t, err)

		rating := &testmodels.RatingSystem{ID: "x"}
		assert.EqualError(t, rating.Validate(), "name in body is required")
	})
}
