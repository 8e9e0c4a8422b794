package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gaurav-prasanna/recipepipe/core/extract"
	"github.com/gaurav-prasanna/recipepipe/core/fetch"
	"github.com/gaurav-prasanna/recipepipe/core/importer"
	"github.com/gaurav-prasanna/recipepipe/core/logger"
	"github.com/gaurav-prasanna/recipepipe/core/store"
)

const (
	defaultCategoryLimit = 5
	maxCategoryLimit     = 100
)

type handlers struct {
	importer Importer
	recipes  Recipes
	log      logger.Logger
}

type importRequest struct {
	URL string `json:"url" binding:"required"`
}

// importRecipe handles POST /api/v1/recipes.
func (h *handlers) importRecipe(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be {\"url\": \"...\"}"})
		return
	}

	rec, err := h.importer.Import(c.Request.Context(), ownerFrom(c), req.URL)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// listRecipes handles GET /api/v1/recipes with an optional ?q= search.
func (h *handlers) listRecipes(c *gin.Context) {
	var (
		recs []*store.Record
		err  error
	)
	if q := c.Query("q"); q != "" {
		recs, err = h.recipes.Search(c.Request.Context(), ownerFrom(c), q)
	} else {
		recs, err = h.recipes.List(c.Request.Context(), ownerFrom(c))
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	if recs == nil {
		recs = []*store.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recs, "count": len(recs)})
}

func (h *handlers) getRecipe(c *gin.Context) {
	rec, err := h.recipes.Get(c.Request.Context(), ownerFrom(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *handlers) updateRecipe(c *gin.Context) {
	var patch store.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	rec, err := h.recipes.Update(c.Request.Context(), ownerFrom(c), c.Param("id"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *handlers) deleteRecipe(c *gin.Context) {
	if err := h.recipes.Delete(c.Request.Context(), ownerFrom(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// topCategories handles GET /api/v1/categories?limit=N.
func (h *handlers) topCategories(c *gin.Context) {
	limit := defaultCategoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxCategoryLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = n
	}

	cats, err := h.recipes.TopCategories(c.Request.Context(), ownerFrom(c), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

func (h *handlers) tags(c *gin.Context) {
	tags, err := h.recipes.Tags(c.Request.Context(), ownerFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// respondError maps pipeline errors to status codes. Mapped errors are
// logged here; unknown errors are recorded on the context for the request
// log and reported as 500.
func (h *handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case errors.Is(err, importer.ErrInvalidURL), errors.Is(err, store.ErrInvalid):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, store.ErrNotFound):
		status, msg = http.StatusNotFound, "recipe not found"
	case errors.Is(err, extract.ErrExtractionFailed):
		status, msg = http.StatusUnprocessableEntity, extract.ErrExtractionFailed.Error()
	case errors.Is(err, fetch.ErrUpstream):
		status, msg = http.StatusBadGateway, fetch.ErrUpstream.Error()
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	} else {
		h.log.Warn("Request failed",
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", status),
			logger.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": msg})
}
