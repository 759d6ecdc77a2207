// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package userrecipes

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/curioswitch/cookshelf/common/recipedb"
)

const recipesCollection = "recipes"

// NewFirestoreBackend returns a Backend storing rows in the recipes collection,
// one document per recipe keyed by its id.
func NewFirestoreBackend(store *firestore.Client) *FirestoreBackend {
	return &FirestoreBackend{
		store: store,
	}
}

type FirestoreBackend struct {
	store *firestore.Client
}

func (b *FirestoreBackend) ListByOwner(ctx context.Context, ownerID string) ([]Row, error) {
	iter := b.store.Collection(recipesCollection).
		Where("userId", "==", ownerID).
		OrderBy("createdAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var rows []Row
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("userrecipes: listing recipes: %w", err)
		}
		var row Row
		if err := doc.DataTo(&row); err != nil {
			// Keep the row with its id so validation reports it as malformed.
			row = Row{ID: doc.Ref.ID, UserID: ownerID}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (b *FirestoreBackend) Get(ctx context.Context, id string) (*Row, error) {
	doc, err := b.store.Collection(recipesCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, recipedb.ErrNotFound
		}
		return nil, fmt.Errorf("userrecipes: getting recipe: %w", err)
	}
	var row Row
	if err := doc.DataTo(&row); err != nil {
		return nil, fmt.Errorf("userrecipes: unmarshalling recipe: %w: %w", recipedb.ErrMalformedRecord, err)
	}
	return &row, nil
}

func (b *FirestoreBackend) Insert(ctx context.Context, row *Row) error {
	if _, err := b.store.Collection(recipesCollection).Doc(row.ID).Create(ctx, row); err != nil {
		return fmt.Errorf("userrecipes: creating recipe in firestore: %w", err)
	}
	return nil
}

func (b *FirestoreBackend) Delete(ctx context.Context, ownerID string, id string) error {
	doc := b.store.Collection(recipesCollection).Doc(id)
	return b.store.RunTransaction(ctx, func(_ context.Context, t *firestore.Transaction) error {
		snap, err := t.Get(doc)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return recipedb.ErrNotFound
			}
			return fmt.Errorf("userrecipes: getting recipe: %w", err)
		}
		var row Row
		if err := snap.DataTo(&row); err != nil {
			return fmt.Errorf("userrecipes: unmarshalling recipe: %w", err)
		}
		if row.UserID != ownerID {
			return recipedb.ErrForbidden
		}
		if err := t.Delete(doc); err != nil {
			return fmt.Errorf("userrecipes: deleting recipe: %w", err)
		}
		return nil
	})
}
