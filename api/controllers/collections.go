package controllers

import (
	"net/http"

	"github.com/eyewantit/eyewantit-backend/api/responses"
	"github.com/eyewantit/eyewantit-backend/api/validators"
	"github.com/eyewantit/eyewantit-backend/internal/collections"
	"github.com/eyewantit/eyewantit-backend/internal/items"
	pkgerrors "github.com/eyewantit/eyewantit-backend/pkg/errors"
	"github.com/eyewantit/eyewantit-backend/pkg/logger"
)

// CollectionCreate persists a new collection owned by the caller.
func CollectionCreate(svc collections.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body collections.CreateCollectionInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		collection, err := svc.Create(ctx, caller, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, collection)
	}
}

// CollectionList returns the caller's collections, default first. With
// include_item_counts=true the cached counts are recomputed before returning.
func CollectionList(svc collections.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		includeItemCounts, err := validators.ParseQueryBool(r, "include_item_counts", false)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.ListForUser(ctx, caller, includeItemCounts)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// CollectionGet fetches one collection.
func CollectionGet(svc collections.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id, err := pathUUID(r, "collectionId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		requireOwnership, err := validators.ParseQueryBool(r, "require_ownership", true)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		collection, err := svc.Get(ctx, caller, id, requireOwnership)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if collection == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "collection not found"))
			return
		}
		responses.WriteSuccess(w, collection)
	}
}

// CollectionUpdate applies a partial update; omitted fields stay untouched.
func CollectionUpdate(svc collections.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id, err := pathUUID(r, "collectionId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body collections.UpdateCollectionInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		collection, err := svc.Update(ctx, caller, id, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, collection)
	}
}

// CollectionDelete removes a collection. Items referencing it are detached, or
// moved to the collection named by the move_to query parameter.
func CollectionDelete(svc collections.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id, err := pathUUID(r, "collectionId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		moveTo, err := validators.ParseQueryUUID(r, "move_to")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Delete(ctx, caller, id, moveTo)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CollectionItems lists the items belonging to a collection.
func CollectionItems(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id, err := pathUUID(r, "collectionId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		requireOwnership, err := validators.ParseQueryBool(r, "require_ownership", true)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.ListInCollection(ctx, caller, id, requireOwnership)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
