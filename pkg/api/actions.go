package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"gitlab.connectwisedev.com/product-scanner/models"
	"gitlab.connectwisedev.com/product-scanner/pkg/research"
)

func (h *Handler) handleAction(ctx context.Context, body actionRequest) events.APIGatewayProxyResponse {
	if body.Action == ActionBundleAI {
		return h.bundleSuggestion(ctx, body)
	}

	col, resp, ok := h.collectionsOrNil()
	if !ok {
		return resp
	}
	asin := strings.ToUpper(strings.TrimSpace(body.ASIN))

	switch body.Action {
	case ActionSave:
		if body.Operation == "remove" {
			if body.ID == "" {
				return errorResponse(http.StatusBadRequest, "id required")
			}
			if err := col.DeleteSaved(ctx, body.UserID, body.ID); err != nil {
				return h.storageFailure(err, "Failed to remove product")
			}
			return respond(http.StatusOK, map[string]any{"success": true})
		}
		if body.Product == nil || strings.TrimSpace(body.Product.Title) == "" || !models.ValidASIN(body.Product.ASIN) {
			return errorResponse(http.StatusBadRequest, "product with title and valid asin required")
		}
		saved, err := col.SaveProduct(ctx, body.UserID, *body.Product)
		if err != nil {
			return h.storageFailure(err, "Failed to save product")
		}
		return respond(http.StatusOK, map[string]any{"success": true, "saved": saved})

	case ActionCompetitor:
		if !models.ValidASIN(asin) {
			return errorResponse(http.StatusBadRequest, "valid asin required")
		}
		if body.Operation == "remove" {
			if err := col.RemoveCompetitor(ctx, body.UserID, asin); err != nil {
				return h.storageFailure(err, "Failed to remove competitor")
			}
			return respond(http.StatusOK, map[string]any{"success": true})
		}
		c, err := col.AddCompetitor(ctx, body.UserID, asin)
		if err != nil {
			return h.storageFailure(err, "Failed to track competitor")
		}
		return respond(http.StatusOK, map[string]any{"success": true, "competitor": c})

	case ActionAlert:
		if !models.ValidASIN(asin) {
			return errorResponse(http.StatusBadRequest, "valid asin required")
		}
		if body.TargetPrice == nil || *body.TargetPrice <= 0 {
			return errorResponse(http.StatusBadRequest, "positive targetPrice required")
		}
		a, err := col.CreateAlert(ctx, body.UserID, asin, *body.TargetPrice)
		if err != nil {
			return h.storageFailure(err, "Failed to create alert")
		}
		return respond(http.StatusOK, map[string]any{"success": true, "alert": a})

	case ActionBundle:
		if strings.TrimSpace(body.BundleName) == "" || len(body.Products) == 0 {
			return errorResponse(http.StatusBadRequest, "bundleName and products required")
		}
		b, err := col.SaveBundle(ctx, body.UserID, strings.TrimSpace(body.BundleName), body.Products)
		if err != nil {
			return h.storageFailure(err, "Failed to save bundle")
		}
		return respond(http.StatusOK, map[string]any{"success": true, "bundle": b})
	}

	return errorResponse(http.StatusBadRequest, "unsupported action: "+body.Action)
}

func (h *Handler) bundleSuggestion(ctx context.Context, body actionRequest) events.APIGatewayProxyResponse {
	text, generated, err := h.research.SuggestBundle(ctx, body.Products, body.Category)
	if errors.Is(err, research.ErrTooFewProducts) {
		return errorResponse(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("bundle suggestion failed")
		return errorResponse(http.StatusInternalServerError, "Could not generate suggestions")
	}
	return respond(http.StatusOK, map[string]any{"success": true, "suggestion": text, "generated": generated})
}

func (h *Handler) handleGet(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	q := req.QueryStringParameters
	action := strings.ToLower(q["action"])
	userID := q["userId"]

	col, resp, ok := h.collectionsOrNil()
	if !ok {
		return resp
	}

	switch action {
	case ActionSaved:
		items, err := col.ListSaved(ctx, userID)
		if err != nil {
			return h.storageFailure(err, "Failed to load saved products")
		}
		return respond(http.StatusOK, map[string]any{"success": true, "products": items})
	case ActionCompetitors:
		items, err := col.ListCompetitors(ctx, userID)
		if err != nil {
			return h.storageFailure(err, "Failed to load competitors")
		}
		return respond(http.StatusOK, map[string]any{"success": true, "competitors": items})
	case ActionAlerts:
		items, err := col.ListAlerts(ctx, userID)
		if err != nil {
			return h.storageFailure(err, "Failed to load alerts")
		}
		return respond(http.StatusOK, map[string]any{"success": true, "alerts": items})
	case ActionBundles:
		items, err := col.ListBundles(ctx, userID)
		if err != nil {
			return h.storageFailure(err, "Failed to load bundles")
		}
		return respond(http.StatusOK, map[string]any{"success": true, "bundles": items})
	case ActionHistory:
		asin := strings.ToUpper(q["asin"])
		if !models.ValidASIN(asin) {
			return errorResponse(http.StatusBadRequest, "valid asin required")
		}
		limit, _ := strconv.Atoi(q["limit"])
		items, err := col.History(ctx, asin, limit)
		if err != nil {
			return h.storageFailure(err, "Failed to load history")
		}
		return respond(http.StatusOK, map[string]any{"success": true, "asin": asin, "history": items})
	}

	return errorResponse(http.StatusBadRequest, "unsupported action: "+action)
}
