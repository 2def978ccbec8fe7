// Package api exposes the search pipeline and the collection operations as
// API Gateway proxy handlers. The same handlers back the Lambdas and the
// local HTTP server.
package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"

	"gitlab.connectwisedev.com/product-scanner/models"
	"gitlab.connectwisedev.com/product-scanner/pkg/database"
	"gitlab.connectwisedev.com/product-scanner/pkg/research"
	"gitlab.connectwisedev.com/product-scanner/pkg/store"
)

// Actions accepted in the "action" field or query parameter.
const (
	ActionSearch      = "search"
	ActionSave        = "save"
	ActionSaved       = "saved"
	ActionCompetitor  = "competitor"
	ActionCompetitors = "competitors"
	ActionAlert       = "alert"
	ActionAlerts      = "alerts"
	ActionBundle      = "bundle"
	ActionBundles     = "bundles"
	ActionBundleAI    = "bundle-ai"
	ActionHistory     = "history"
)

const maxBodyBytes = 1 << 20

// Collections is the persistence surface used by the collection actions.
type Collections interface {
	SaveProduct(ctx context.Context, userID string, p models.ProductRecord) (*models.SavedProduct, error)
	ListSaved(ctx context.Context, userID string) ([]models.SavedProduct, error)
	DeleteSaved(ctx context.Context, userID, id string) error
	AddCompetitor(ctx context.Context, userID, asin string) (*models.Competitor, error)
	RemoveCompetitor(ctx context.Context, userID, asin string) error
	ListCompetitors(ctx context.Context, userID string) ([]models.Competitor, error)
	CreateAlert(ctx context.Context, userID, asin string, target float64) (*models.PriceAlert, error)
	ListAlerts(ctx context.Context, userID string) ([]models.PriceAlert, error)
	SaveBundle(ctx context.Context, userID, name string, products []models.ProductRecord) (*models.Bundle, error)
	ListBundles(ctx context.Context, userID string) ([]models.Bundle, error)
	History(ctx context.Context, asin string, limit int) ([]models.HistorySample, error)
}

// Handler dispatches API Gateway requests by action.
type Handler struct {
	research    *research.Service
	collections Collections
	logger      zerolog.Logger
}

// NewHandler builds a Handler. collections may be nil, in which case every
// collection action answers 503.
func NewHandler(logger zerolog.Logger, svc *research.Service, collections Collections) *Handler {
	return &Handler{
		research:    svc,
		collections: collections,
		logger:      logger.With().Str("component", "api").Logger(),
	}
}

// actionRequest is the union of every POST body.
type actionRequest struct {
	Action      string                 `json:"action"`
	Operation   string                 `json:"operation"`
	UserID      string                 `json:"userId"`
	Category    string                 `json:"category"`
	Keyword     string                 `json:"keyword"`
	SearchQuery string                 `json:"searchQuery"`
	Filters     research.Filters       `json:"filters"`
	Product     *models.ProductRecord  `json:"product"`
	Products    []models.ProductRecord `json:"products"`
	ASIN        string                 `json:"asin"`
	ID          string                 `json:"id"`
	TargetPrice *float64               `json:"targetPrice"`
	BundleName  string                 `json:"bundleName"`
}

// Handle routes any request: POST bodies by their action, GET by ?action=.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch req.HTTPMethod {
	case http.MethodOptions:
		return respond(http.StatusNoContent, nil), nil
	case http.MethodGet:
		return h.handleGet(ctx, req), nil
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		body, resp, ok := decodeBody(req)
		if !ok {
			return resp, nil
		}
		if body.Action == "" || body.Action == ActionSearch {
			return h.search(ctx, body), nil
		}
		return h.handleAction(ctx, body), nil
	default:
		return errorResponse(http.StatusMethodNotAllowed, "method not allowed"), nil
	}
}

// Search handles only search requests.
func (h *Handler) Search(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if req.HTTPMethod == http.MethodOptions {
		return respond(http.StatusNoContent, nil), nil
	}
	if req.HTTPMethod != http.MethodPost {
		return errorResponse(http.StatusMethodNotAllowed, "search requires POST"), nil
	}
	body, resp, ok := decodeBody(req)
	if !ok {
		return resp, nil
	}
	if body.Action != "" && body.Action != ActionSearch {
		return errorResponse(http.StatusBadRequest, "unsupported action: "+body.Action), nil
	}
	return h.search(ctx, body), nil
}

// Collections handles every non-search action.
func (h *Handler) Collections(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch req.HTTPMethod {
	case http.MethodOptions:
		return respond(http.StatusNoContent, nil), nil
	case http.MethodGet:
		return h.handleGet(ctx, req), nil
	}
	body, resp, ok := decodeBody(req)
	if !ok {
		return resp, nil
	}
	if body.Action == "" || body.Action == ActionSearch {
		return errorResponse(http.StatusBadRequest, "search is not served here"), nil
	}
	return h.handleAction(ctx, body), nil
}

func decodeBody(req events.APIGatewayProxyRequest) (actionRequest, events.APIGatewayProxyResponse, bool) {
	var body actionRequest
	raw := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return body, errorResponse(http.StatusBadRequest, "invalid base64 body"), false
		}
		raw = decoded
	}
	if len(raw) > maxBodyBytes {
		return body, errorResponse(http.StatusRequestEntityTooLarge, "request body too large"), false
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return body, errorResponse(http.StatusBadRequest, "request body required"), false
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return body, errorResponse(http.StatusBadRequest, "malformed JSON body"), false
	}
	body.Action = strings.ToLower(strings.TrimSpace(body.Action))
	body.Operation = strings.ToLower(strings.TrimSpace(body.Operation))
	return body, events.APIGatewayProxyResponse{}, true
}

func (h *Handler) search(ctx context.Context, body actionRequest) events.APIGatewayProxyResponse {
	keyword := body.Keyword
	if keyword == "" {
		keyword = body.SearchQuery
	}
	res, err := h.research.Search(ctx, research.SearchRequest{
		Category: body.Category,
		Keyword:  keyword,
		Filters:  body.Filters,
	})
	if errors.Is(err, research.ErrEmptyQuery) {
		return errorResponse(http.StatusBadRequest, "Please select a category or enter a keyword")
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("search failed")
		return errorResponse(http.StatusInternalServerError, "Search failed. Please try again.")
	}

	resp := respond(http.StatusOK, struct {
		Success bool `json:"success"`
		*research.SearchResult
	}{true, res})
	resp.Headers["Cache-Control"] = "no-store"
	return resp
}

// storageFailure maps a collection error to a status code.
func (h *Handler) storageFailure(err error, msg string) events.APIGatewayProxyResponse {
	switch {
	case errors.Is(err, database.ErrStorageUnavailable):
		return errorResponse(http.StatusServiceUnavailable, "Database not configured")
	case errors.Is(err, store.ErrNotFound):
		return errorResponse(http.StatusNotFound, "not found")
	}
	h.logger.Error().Err(err).Msg(msg)
	return errorResponse(http.StatusInternalServerError, msg)
}

func (h *Handler) collectionsOrNil() (Collections, events.APIGatewayProxyResponse, bool) {
	if h.collections == nil {
		return nil, errorResponse(http.StatusServiceUnavailable, "Database not configured"), false
	}
	return h.collections, events.APIGatewayProxyResponse{}, true
}
