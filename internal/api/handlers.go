package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Adda-Baaj/arogya-feed/internal/auth"
	"github.com/Adda-Baaj/arogya-feed/internal/domain"
	"github.com/Adda-Baaj/arogya-feed/internal/store"
	"github.com/Adda-Baaj/arogya-feed/pkg/feed"
	"github.com/Adda-Baaj/arogya-feed/pkg/publishers"
	"github.com/gin-gonic/gin"
)

type testimonialRequest struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type subscriptionRequest struct {
	Email string `json:"email"`
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

const identityKey = "identity"

// identify resolves the caller from its bearer token. Callers without a
// valid token continue as signed out.
func (h *handlers) identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok || h.verifier == nil {
			c.Next()
			return
		}
		id, err := h.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			h.log.DebugObj("bearer token rejected", "auth_rejected", map[string]any{
				"path":  c.FullPath(),
				"error": err.Error(),
			})
			c.Next()
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

func caller(c *gin.Context) *domain.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(*domain.Identity); ok {
			return id
		}
	}
	return nil
}

func (h *handlers) getSession(c *gin.Context) {
	id := caller(c)
	c.JSON(http.StatusOK, gin.H{"signed_in": id != nil, "identity": id})
}

// requireSignedIn rejects callers identify could not resolve.
func (h *handlers) requireSignedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		if caller(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "sign in required"})
			return
		}
		c.Next()
	}
}

// getFeed returns the outcome of one feed load. A failed fetch is still
// a 200: the state field tells the page to show its empty affordance.
// Requests the server cannot build at all are not feed outcomes.
func (h *handlers) getFeed(c *gin.Context) {
	section := h.pages.News(c.Request.Context(), c.Query("profile"))
	switch {
	case section.State != feed.StateFailed:
	case errors.Is(section.Err, feed.ErrUnknownProfile):
		c.JSON(http.StatusNotFound, gin.H{"error": section.Error})
		return
	case errors.Is(section.Err, feed.ErrInvalidRequest):
		h.log.ErrorObj("feed misconfigured", "feed_config_error", map[string]any{
			"profile": section.Profile,
			"error":   section.Error,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "feed is not configured"})
		return
	}
	c.JSON(http.StatusOK, section)
}

func (h *handlers) getWelcome(c *gin.Context) {
	c.JSON(http.StatusOK, h.pages.Welcome(c.Request.Context()))
}

func (h *handlers) getHome(c *gin.Context) {
	c.JSON(http.StatusOK, h.pages.Home(c.Request.Context()))
}

func (h *handlers) listTestimonials(c *gin.Context) {
	items, err := h.docs.ListTestimonials(c.Request.Context())
	if err != nil {
		h.log.ErrorObj("list testimonials failed", "testimonials_error", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load testimonials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *handlers) postTestimonial(c *gin.Context) {
	var req testimonialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}

	t, err := h.docs.AddTestimonial(c.Request.Context(), req.Name, req.Message)
	if err != nil {
		h.writeStoreError(c, err)
		return
	}

	if evt, err := publishers.TestimonialCreated(t); err == nil {
		h.pubs.Publish(c.Request.Context(), evt)
	}
	c.JSON(http.StatusCreated, t)
}

func (h *handlers) postSubscription(c *gin.Context) {
	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}

	sub, err := h.docs.AddSubscription(c.Request.Context(), req.Email)
	if err != nil {
		h.writeStoreError(c, err)
		return
	}

	if evt, err := publishers.SubscriptionCreated(sub); err == nil {
		h.pubs.Publish(c.Request.Context(), evt)
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *handlers) writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": strings.TrimPrefix(err.Error(), store.ErrInvalid.Error()+": ")})
	case errors.Is(err, store.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "already subscribed"})
	default:
		h.log.ErrorObj("document write failed", "store_write_error", map[string]any{
			"path":  c.FullPath(),
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save"})
	}
}
