package handlers

import (
	"errors"
	"net/http"

	"github.com/bitrader/auth/internal/models"
	"github.com/bitrader/auth/internal/services"
	"github.com/gin-gonic/gin"
)

// respondError terminates the request with the envelope matching the
// service error. Every failure path of every endpoint funnels through
// here so the taxonomy maps to statuses in exactly one place.
func respondError(c *gin.Context, err error) {
	var insertErr *services.InsertFailedError

	switch {
	case errors.Is(err, models.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, models.EmptyResponse(err.Error(), http.StatusServiceUnavailable))
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, models.EmptyResponse(models.MsgNotFoundDocument, http.StatusNotFound))
	case errors.Is(err, services.ErrMalformedID):
		c.JSON(http.StatusBadRequest, models.EmptyResponse(err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrWrongAPIKey):
		c.JSON(http.StatusForbidden, models.EmptyResponse(models.MsgWrongAPIKey, http.StatusForbidden))
	case errors.Is(err, services.ErrEventExpired):
		c.JSON(http.StatusConflict, models.EmptyResponse(models.MsgEventExpired, http.StatusConflict))
	case errors.As(err, &insertErr):
		c.JSON(http.StatusNotAcceptable, models.EmptyResponse(insertErr.Error(), http.StatusNotAcceptable))
	default:
		c.JSON(http.StatusInternalServerError, models.EmptyResponse(err.Error(), http.StatusInternalServerError))
	}
}

func AddEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.EventAddRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.EmptyResponse(err.Error(), http.StatusBadRequest))
			return
		}

		result, err := es.AddEvent(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}

		if result.Existing != nil {
			c.JSON(http.StatusFound, models.NewResponse(result.Existing, models.MsgFoundDocument, http.StatusFound))
			return
		}

		inserted := models.InsertedID{OID: result.InsertedID.Hex()}
		c.JSON(http.StatusCreated, models.NewResponse(inserted, models.MsgInserted, http.StatusCreated))
	}
}

func GetAvailableEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		available, err := es.GetAvailableEvents(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.NewResponse(available, models.MsgFetched, http.StatusOK))
	}
}

func CastVote(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CastVoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.EmptyResponse(err.Error(), http.StatusBadRequest))
			return
		}

		if err := es.CastVote(c.Request.Context(), req); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.EmptyResponse(models.MsgUpdated, http.StatusOK))
	}
}

func SetExpire(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ExpireEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.EmptyResponse(err.Error(), http.StatusBadRequest))
			return
		}

		event, err := es.ExpireEvent(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.NewResponse(event, models.MsgUpdated, http.StatusOK))
	}
}

func DeleteEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID := c.Param("id")
		apiKey := c.Param("api_key")

		event, err := es.DeleteEvent(c.Request.Context(), eventID, apiKey)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.NewResponse(event, models.MsgDeleted, http.StatusOK))
	}
}
