// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package favourites

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RecipeFavourite is a favourite recipe of a user, stored under
// users/{uid}/favourites/recipe-{id}.
type RecipeFavourite struct {
	// RecipeID is the ID of the favourite recipe.
	RecipeID string `firestore:"recipeId"`

	// CreatedAt is the time the favourite was added.
	CreatedAt time.Time `firestore:"createdAt"`
}

func NewFirestoreStore(store *firestore.Client) *FirestoreStore {
	return &FirestoreStore{
		store: store,
		now:   time.Now,
	}
}

type FirestoreStore struct {
	store *firestore.Client
	now   func() time.Time
}

func (s *FirestoreStore) List(ctx context.Context, ownerID string) ([]string, error) {
	iter := s.collection(ownerID).OrderBy("createdAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var ids []string
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("favourites: listing favourites: %w", err)
		}
		var fav RecipeFavourite
		if err := doc.DataTo(&fav); err != nil {
			return nil, fmt.Errorf("favourites: unmarshalling favourite: %w", err)
		}
		ids = append(ids, fav.RecipeID)
	}
	return ids, nil
}

func (s *FirestoreStore) Add(ctx context.Context, ownerID string, recipeID string) error {
	fav := RecipeFavourite{
		RecipeID:  recipeID,
		CreatedAt: s.now(),
	}
	// Create keeps the first createdAt when the favourite already exists.
	if _, err := s.doc(ownerID, recipeID).Create(ctx, fav); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil
		}
		return fmt.Errorf("favourites: saving favourite: %w", err)
	}
	return nil
}

func (s *FirestoreStore) Remove(ctx context.Context, ownerID string, recipeID string) error {
	if _, err := s.doc(ownerID, recipeID).Delete(ctx); err != nil {
		return fmt.Errorf("favourites: deleting favourite: %w", err)
	}
	return nil
}

func (s *FirestoreStore) collection(ownerID string) *firestore.CollectionRef {
	return s.store.Collection("users").Doc(ownerID).Collection("favourites")
}

func (s *FirestoreStore) doc(ownerID string, recipeID string) *firestore.DocumentRef {
	return s.collection(ownerID).Doc("recipe-" + recipeID)
}
