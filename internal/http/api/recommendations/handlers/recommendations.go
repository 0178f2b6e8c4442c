package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	apphttp "github.com/shopcart-labs/recommendations/internal/http"
	"github.com/shopcart-labs/recommendations/internal/models"
	"github.com/shopcart-labs/recommendations/internal/store"
	log "github.com/sirupsen/logrus"
)

const badBodyMessage = "Invalid recommendation: body of request contained bad or no data"

// RecommendationStore is the persistence used by RecommendationHandler.
type RecommendationStore interface {
	Create(ctx context.Context, rec *models.Recommendation) error
	Update(ctx context.Context, rec *models.Recommendation) error
	Delete(ctx context.Context, id uint64) error
	Find(ctx context.Context, id uint64) (*models.Recommendation, error)
	All(ctx context.Context) ([]models.Recommendation, error)
	FindByName(ctx context.Context, name string) ([]models.Recommendation, error)
	FindByOriginalProductID(ctx context.Context, productID int64) ([]models.Recommendation, error)
	FindByRecommendationProductID(ctx context.Context, productID int64) ([]models.Recommendation, error)
	FindByRecommendationProductName(ctx context.Context, name string) ([]models.Recommendation, error)
	FindByReason(ctx context.Context, reason models.Reason) ([]models.Recommendation, error)
	FindByActivated(ctx context.Context, activated bool) ([]models.Recommendation, error)
	Activate(ctx context.Context, id uint64) (*models.Recommendation, error)
}

// RecommendationHandler serves the /recommendations resource.
type RecommendationHandler struct {
	store    RecommendationStore
	basePath string // Prefix used to build Location headers.
}

// NewRecommendationHandler constructs a handler backed by s.
func NewRecommendationHandler(s RecommendationStore, basePath string) *RecommendationHandler {
	return &RecommendationHandler{store: s, basePath: strings.TrimRight(basePath, "/")}
}

// List returns recommendations, filtered by at most one query parameter.
// Precedence: original_product_id, name, recommendation_product_name,
// reason, activated, recommendation_product_id.
func (h *RecommendationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		rows    []models.Recommendation
		errList error
	)
	switch {
	case c.Query("original_product_id") != "":
		productID, errParse := strconv.ParseInt(strings.TrimSpace(c.Query("original_product_id")), 10, 64)
		if errParse != nil {
			apphttp.WriteError(c, http.StatusBadRequest, "Invalid query: original_product_id must be an integer")
			return
		}
		log.Infof("listing recommendations with original_product_id=%d", productID)
		rows, errList = h.store.FindByOriginalProductID(ctx, productID)
	case c.Query("name") != "":
		log.Infof("listing recommendations with name=%s", c.Query("name"))
		rows, errList = h.store.FindByName(ctx, c.Query("name"))
	case c.Query("recommendation_product_name") != "":
		log.Infof("listing recommendations with recommendation_product_name=%s", c.Query("recommendation_product_name"))
		rows, errList = h.store.FindByRecommendationProductName(ctx, c.Query("recommendation_product_name"))
	case c.Query("reason") != "":
		reason, errReason := models.ParseReason(strings.TrimSpace(c.Query("reason")))
		if errReason != nil {
			apphttp.WriteError(c, http.StatusBadRequest, fmt.Sprintf("Invalid query: reason %s", c.Query("reason")))
			return
		}
		log.Infof("listing recommendations with reason=%s", reason)
		rows, errList = h.store.FindByReason(ctx, reason)
	case c.Query("activated") != "":
		activated, errParse := strconv.ParseBool(strings.TrimSpace(c.Query("activated")))
		if errParse != nil {
			apphttp.WriteError(c, http.StatusBadRequest, "Invalid query: activated must be true or false")
			return
		}
		log.Infof("listing recommendations with activated=%t", activated)
		rows, errList = h.store.FindByActivated(ctx, activated)
	case c.Query("recommendation_product_id") != "":
		productID, errParse := strconv.ParseInt(strings.TrimSpace(c.Query("recommendation_product_id")), 10, 64)
		if errParse != nil {
			apphttp.WriteError(c, http.StatusBadRequest, "Invalid query: recommendation_product_id must be an integer")
			return
		}
		log.Infof("listing recommendations with recommendation_product_id=%d", productID)
		rows, errList = h.store.FindByRecommendationProductID(ctx, productID)
	default:
		rows, errList = h.store.All(ctx)
	}
	if errList != nil {
		h.internalError(c, "list recommendations failed", errList)
		return
	}

	out := make([]map[string]any, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].Serialize())
	}
	log.Infof("returning %d recommendations", len(out))
	c.JSON(http.StatusOK, out)
}

// Get returns a single recommendation by ID.
func (h *RecommendationHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	rec, errFind := h.store.Find(c.Request.Context(), id)
	if errFind != nil {
		h.internalError(c, "fetch recommendation failed", errFind)
		return
	}
	if rec == nil {
		writeNotFound(c, c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, rec.Serialize())
}

// Create validates and inserts a new recommendation.
func (h *RecommendationHandler) Create(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	data, ok := decodeBody(c)
	if !ok {
		return
	}

	var rec models.Recommendation
	if errDeserialize := rec.Deserialize(data); errDeserialize != nil {
		writeValidation(c, errDeserialize)
		return
	}
	if errCreate := h.store.Create(c.Request.Context(), &rec); errCreate != nil {
		h.internalError(c, "create recommendation failed", errCreate)
		return
	}

	log.Infof("recommendation with id [%d] created", rec.ID)
	c.Header("Location", fmt.Sprintf("%s/%d", h.basePath, rec.ID))
	c.JSON(http.StatusCreated, rec.Serialize())
}

// Update replaces the fields of an existing recommendation.
func (h *RecommendationHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if !requireJSON(c) {
		return
	}

	ctx := c.Request.Context()
	rec, errFind := h.store.Find(ctx, id)
	if errFind != nil {
		h.internalError(c, "fetch recommendation failed", errFind)
		return
	}
	if rec == nil {
		writeNotFound(c, c.Param("id"))
		return
	}

	data, ok := decodeBody(c)
	if !ok {
		return
	}
	if errDeserialize := rec.Deserialize(data); errDeserialize != nil {
		writeValidation(c, errDeserialize)
		return
	}
	rec.ID = id
	if errUpdate := h.store.Update(ctx, rec); errUpdate != nil {
		if errors.Is(errUpdate, store.ErrNotFound) {
			writeNotFound(c, c.Param("id"))
			return
		}
		h.internalError(c, "update recommendation failed", errUpdate)
		return
	}

	log.Infof("recommendation with id [%d] updated", rec.ID)
	c.JSON(http.StatusOK, rec.Serialize())
}

// Delete removes a recommendation. Deleting an absent record succeeds.
func (h *RecommendationHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if errDelete := h.store.Delete(c.Request.Context(), id); errDelete != nil && !errors.Is(errDelete, store.ErrNotFound) {
		h.internalError(c, "delete recommendation failed", errDelete)
		return
	}

	log.Infof("recommendation with id [%d] delete complete", id)
	c.Status(http.StatusNoContent)
}

// Activate flips a recommendation from inactive to active.
func (h *RecommendationHandler) Activate(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	rec, errActivate := h.store.Activate(c.Request.Context(), id)
	switch {
	case errActivate == nil:
	case errors.Is(errActivate, store.ErrNotFound):
		writeNotFound(c, c.Param("id"))
		return
	case errors.Is(errActivate, store.ErrAlreadyActivated):
		apphttp.WriteError(c, http.StatusConflict, fmt.Sprintf("Recommendation with id '%d' is already activated.", id))
		return
	default:
		h.internalError(c, "activate recommendation failed", errActivate)
		return
	}

	log.Infof("recommendation with id [%d] activated", id)
	c.JSON(http.StatusOK, rec.Serialize())
}

// pathID parses :id. Anything other than a positive integer names no record.
func (h *RecommendationHandler) pathID(c *gin.Context) (uint64, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	id, errID := strconv.ParseUint(raw, 10, 64)
	if errID != nil || id == 0 {
		writeNotFound(c, raw)
		return 0, false
	}
	return id, true
}

func (h *RecommendationHandler) internalError(c *gin.Context, msg string, err error) {
	_ = c.Error(err)
	log.WithError(err).WithField("request_id", apphttp.RequestIDFrom(c)).Error(msg)
	apphttp.WriteError(c, http.StatusInternalServerError, "An internal error occurred")
}

func requireJSON(c *gin.Context) bool {
	if !strings.EqualFold(c.ContentType(), gin.MIMEJSON) {
		apphttp.WriteError(c, http.StatusUnsupportedMediaType, fmt.Sprintf("Content-Type must be %s", gin.MIMEJSON))
		return false
	}
	return true
}

func decodeBody(c *gin.Context) (any, bool) {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	var data any
	if errDecode := dec.Decode(&data); errDecode != nil {
		writeBadBody(c, errDecode)
		return nil, false
	}
	// The body must hold exactly one JSON value.
	if _, errTrailing := dec.Token(); !errors.Is(errTrailing, io.EOF) {
		writeBadBody(c, errTrailing)
		return nil, false
	}
	return data, true
}

func writeBadBody(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		apphttp.WriteError(c, http.StatusBadRequest, fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
		return
	}
	apphttp.WriteError(c, http.StatusBadRequest, badBodyMessage)
}

func writeValidation(c *gin.Context, err error) {
	var valErr *models.ValidationError
	if errors.As(err, &valErr) {
		apphttp.WriteError(c, http.StatusBadRequest, valErr.Message)
		return
	}
	apphttp.WriteError(c, http.StatusBadRequest, err.Error())
}

func writeNotFound(c *gin.Context, id string) {
	apphttp.WriteError(c, http.StatusNotFound, fmt.Sprintf("Recommendation with id '%s' was not found.", id))
}
