package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"time"

	"lookup_bot/internal/ledger"
	"lookup_bot/internal/service"

	"github.com/gin-gonic/gin"
)

// Auth exchanges the configured admin API key for a bearer token.
func (h *Handler) Auth(c *gin.Context) {
	var req struct {
		Key string `json:"key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	if h.AdminAPIKey == "" ||
		subtle.ConstantTimeCompare([]byte(req.Key), []byte(h.AdminAPIKey)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid key"})
		return
	}

	token, err := service.GenerateAdminJWT()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Stats returns the aggregate ledger snapshot.
func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.Ledger.Stats())
}

// User returns everything the ledger knows about one user.
func (h *Handler) User(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	balance, unlimited, err := h.Ledger.Balance(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{
		"user_id":   userID,
		"known":     h.Ledger.Knows(userID),
		"balance":   balance,
		"unlimited": unlimited,
		"banned":    h.Ledger.IsBanned(userID),
		"referrals": h.Ledger.ReferralCount(userID),
		"rank":      h.Ledger.ReferralRank(userID),
		"history":   h.Ledger.RecentSearches(userID, 10),
	}
	if expiresAt, permanent, exists := h.Ledger.GrantExpiry(userID); exists {
		if permanent {
			resp["grant"] = "permanent"
		} else {
			resp["grant"] = expiresAt.UTC().Format(time.RFC3339)
		}
	}
	c.JSON(http.StatusOK, resp)
}

// AddCredits tops up a user's balance.
func (h *Handler) AddCredits(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount is required"})
		return
	}

	newBalance, err := h.Ledger.AddCredits(c.Request.Context(), userID, req.Amount)
	if errors.Is(err, ledger.ErrInvalidAmount) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "balance": newBalance})
}

// Ban adds the user to the ban set.
func (h *Handler) Ban(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.Reason == "" {
		req.Reason = "no reason provided"
	}

	if err := h.Ledger.Ban(c.Request.Context(), userID, req.Reason); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "banned": true})
}

// Unban removes the user from the ban set.
func (h *Handler) Unban(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	wasBanned, err := h.Ledger.Unban(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "was_banned": wasBanned})
}

// Grant gives unlimited access, permanent unless a duration is sent.
func (h *Handler) Grant(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	var req struct {
		DurationHours int64 `json:"duration_hours"`
	}
	_ = c.ShouldBindJSON(&req)

	var expiresAt time.Time
	if req.DurationHours > 0 {
		expiresAt = time.Now().Add(time.Duration(req.DurationHours) * time.Hour)
	}

	if err := h.Ledger.Grant(c.Request.Context(), userID, expiresAt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "unlimited": true})
}

// RevokeGrant removes an unlimited grant.
func (h *Handler) RevokeGrant(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	existed, err := h.Ledger.Revoke(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "existed": existed})
}

// TopReferrers returns the referral leaderboard.
func (h *Handler) TopReferrers(c *gin.Context) {
	limit := 10
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	c.JSON(http.StatusOK, gin.H{"referrers": h.Ledger.TopReferrers(limit)})
}

func pathUserID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return 0, false
	}
	return id, true
}
