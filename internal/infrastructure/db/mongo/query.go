package mongo

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/sweetshop/inventory-api/internal/core/domain"
)

// sortKeys maps listing sort fields to document keys.
var sortKeys = map[domain.SortField]string{
	domain.SortByName:        "name",
	domain.SortByCategory:    "category",
	domain.SortByPrice:       "price",
	domain.SortByQuantity:    "quantity",
	domain.SortByDescription: "description",
	domain.SortByImageURL:    "imageUrl",
	domain.SortByCreatedAt:   "createdAt",
	domain.SortByUpdatedAt:   "updatedAt",
}

// buildListFilter translates a product filter into a query document. Search
// text is matched literally, case-insensitively, against name or description.
func buildListFilter(f domain.ProductFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = string(f.Category)
	}
	if f.InStock != nil {
		if *f.InStock {
			filter["quantity"] = bson.M{"$gt": 0}
		} else {
			filter["quantity"] = 0
		}
	}
	if f.Search != "" {
		pattern := containsFold(f.Search)
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}
	return filter
}

func containsFold(text string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(text), "$options": "i"}
}

// buildSort returns the sort document; _id breaks ties so pages are stable.
func buildSort(f domain.ProductFilter) bson.D {
	key, ok := sortKeys[f.SortBy]
	if !ok {
		key = "createdAt"
	}
	dir := 1
	if f.Desc {
		dir = -1
	}
	return bson.D{{Key: key, Value: dir}, {Key: "_id", Value: dir}}
}

// buildPatchSet returns the $set body for a partial update. Only non-nil
// fields are written; updatedAt is always refreshed.
func buildPatchSet(patch domain.ProductPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Category != nil {
		set["category"] = string(*patch.Category)
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Quantity != nil {
		set["quantity"] = *patch.Quantity
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.ImageURL != nil {
		set["imageUrl"] = *patch.ImageURL
	}
	return set
}
