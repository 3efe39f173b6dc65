package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/eyewantit/eyewantit-backend/api/responses"
	"github.com/eyewantit/eyewantit-backend/api/validators"
	"github.com/eyewantit/eyewantit-backend/internal/items"
	"github.com/eyewantit/eyewantit-backend/pkg/db/models"
	pkgerrors "github.com/eyewantit/eyewantit-backend/pkg/errors"
	"github.com/eyewantit/eyewantit-backend/pkg/logger"
	"github.com/eyewantit/eyewantit-backend/pkg/pagination"
)

type itemCollectionsPayload struct {
	CollectionIDs []uuid.UUID `json:"collection_ids" validate:"required,min=1"`
}

func queryOptions(r *http.Request) (items.QueryOptions, error) {
	opts := items.QueryOptions{Scope: items.ScopeOwn}
	switch scope := strings.TrimSpace(r.URL.Query().Get("scope")); scope {
	case "", string(items.ScopeOwn):
	case string(items.ScopeAll):
		opts.Scope = items.ScopeAll
	case string(items.ScopeUser):
		opts.Scope = items.ScopeUser
	default:
		return opts, pkgerrors.New(pkgerrors.CodeValidation, "scope must be one of own, all, user")
	}

	userID, err := validators.ParseQueryUUID(r, "user_id")
	if err != nil {
		return opts, err
	}
	opts.UserID = userID
	if opts.Scope == items.ScopeUser && opts.UserID == nil {
		return opts, pkgerrors.New(pkgerrors.CodeValidation, "user_id is required for the user scope")
	}

	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
	if err != nil {
		return opts, err
	}
	opts.Limit = limit
	opts.Cursor = strings.TrimSpace(r.URL.Query().Get("cursor"))
	return opts, nil
}

// setNextCursor advertises the next page when a full page came back.
func setNextCursor(w http.ResponseWriter, opts items.QueryOptions, results []items.ItemDTO) {
	if opts.Limit <= 0 || len(results) < opts.Limit {
		return
	}
	last := results[len(results)-1]
	w.Header().Set("X-Next-Cursor", pagination.EncodeCursor(pagination.Cursor{
		CreatedAt: last.CreatedAt,
		ID:        last.ID,
	}))
}

// ItemCreate persists a new wishlist item for the caller.
func ItemCreate(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body items.CreateItemInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.Create(ctx, caller, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// ItemGet fetches one item. Ownership is enforced unless require_ownership=false,
// which lets gifters view claimable items.
func ItemGet(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		requireOwnership, err := validators.ParseQueryBool(r, "require_ownership", true)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.Get(ctx, caller, id, requireOwnership)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if item == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "item not found"))
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ItemUpdate applies a partial update; omitted fields stay untouched.
func ItemUpdate(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body items.UpdateItemInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.Update(ctx, caller, id, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ItemDelete removes an item and refreshes affected collection counts.
func ItemDelete(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, caller, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// ItemClaim marks an item as claimed by the caller.
func ItemClaim(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.Claim(ctx, caller, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ItemUnclaim releases a claim on an item.
func ItemUnclaim(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.Unclaim(ctx, caller, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ItemSearch finds items by name or description within the requested scope.
func ItemSearch(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		term := validators.SanitizeString(r.URL.Query().Get("q"), 200)
		opts, err := queryOptions(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		results, err := svc.Search(ctx, caller, term, opts)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		setNextCursor(w, opts, results)
		responses.WriteSuccess(w, results)
	}
}

// ItemsByScoreRange lists items whose desire score falls inside [min, max].
func ItemsByScoreRange(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		min, err := validators.ParseQueryInt(r, "min", models.ScoreMin, models.ScoreMin, models.ScoreMax)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		max, err := validators.ParseQueryInt(r, "max", models.ScoreMax, models.ScoreMin, models.ScoreMax)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		opts, err := queryOptions(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		results, err := svc.ListByScoreRange(ctx, caller, min, max, opts)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		setNextCursor(w, opts, results)
		responses.WriteSuccess(w, results)
	}
}

// ItemAddToCollections merges the given collections into the item's memberships.
func ItemAddToCollections(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body itemCollectionsPayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.AddToCollections(ctx, caller, id, body.CollectionIDs)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ItemRemoveFromCollections drops the given collections from the item's memberships.
func ItemRemoveFromCollections(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body itemCollectionsPayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.RemoveFromCollections(ctx, caller, id, body.CollectionIDs)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}
