package handlers

import (
	"context"
	"database/sql"
	"errors"
	nethttp "net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lingua-service/internal/metrics"
	"lingua-service/internal/repositories"
	"lingua-service/internal/telemetry"
)

type FriendHandler struct {
	friends repositories.FriendRepository
	users   repositories.UserRepository
	audit   *telemetry.AuditEmitter
}

func NewFriendHandler(friends repositories.FriendRepository, users repositories.UserRepository, audit *telemetry.AuditEmitter) *FriendHandler {
	return &FriendHandler{friends: friends, users: users, audit: audit}
}

func (h *FriendHandler) SendRequest(c *gin.Context) {
	requestID := requestIDFromHeader(c)
	userID := userIDFromContext(c)
	if userID == nil {
		h.emitAudit(c.Request.Context(), "ERROR", "internal error", requestID, nil)
		metrics.IncFriendRequest(metrics.StatusFailed)
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	senderID := *userID

	recipientID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		metrics.IncFriendRequest(metrics.StatusFailed)
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if recipientID == senderID {
		metrics.IncFriendRequest(metrics.StatusFailed)
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "cannot send request to yourself"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.users.GetByID(ctx, recipientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.emitAudit(ctx, "ERROR", "target user not found", requestID, userID)
			metrics.IncFriendRequest(metrics.StatusFailed)
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "target user not found"})
			return
		}
		h.emitAudit(ctx, "ERROR", "internal error", requestID, userID)
		metrics.IncFriendRequest(metrics.StatusFailed)
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to fetch target user"})
		return
	}

	friends, err := h.friends.AreFriends(ctx, senderID, recipientID)
	if err != nil {
		h.emitAudit(ctx, "ERROR", "internal error", requestID, userID)
		metrics.IncFriendRequest(metrics.StatusFailed)
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to check friendship"})
		return
	}
	if friends {
		h.emitAudit(ctx, "ERROR", "users are already friends", requestID, userID)
		metrics.IncFriendRequest(metrics.StatusFailed)
		c.JSON(nethttp.StatusConflict, gin.H{"error": "users are already friends"})
		return
	}

	exists, err := h.friends.HasPendingRequest(ctx, senderID, recipientID)
	if err != nil {
		h.emitAudit(ctx, "ERROR", "internal error", requestID, userID)
		metrics.IncFriendRequest(metrics.StatusFailed)
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to check requests"})
		return
	}
	if exists {
		h.emitAudit(ctx, "ERROR", "pending friend request already exists", requestID, userID)
		metrics.IncFriendRequest(metrics.StatusFailed)
		c.JSON(nethttp.StatusConflict, gin.H{"error": "pending friend request already exists"})
		return
	}

	req, err := h.friends.CreateRequest(ctx, senderID, recipientID)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestExists) {
			h.emitAudit(ctx, "ERROR", "pending friend request already exists", requestID, userID)
			metrics.IncFriendRequest(metrics.StatusFailed)
			c.JSON(nethttp.StatusConflict, gin.H{"error": "pending friend request already exists"})
			return
		}
		if errors.Is(err, sql.ErrNoRows) {
			h.emitAudit(ctx, "ERROR", "target user not found", requestID, userID)
			metrics.IncFriendRequest(metrics.StatusFailed)
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "target user not found"})
			return
		}
		h.emitAudit(ctx, "ERROR", "internal error", requestID, userID)
		metrics.IncFriendRequest(metrics.StatusFailed)
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to create request"})
		return
	}

	h.emitAudit(ctx, "INFO", "Friend request sent to '"+strconv.FormatInt(recipientID, 10)+"'", requestID, userID)
	metrics.IncFriendRequest(metrics.StatusSuccess)
	c.JSON(nethttp.StatusCreated, req)
}

func (h *FriendHandler) ListIncoming(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	requests, err := h.friends.GetIncomingRequests(c.Request.Context(), *userID)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to load requests"})
		return
	}

	c.JSON(nethttp.StatusOK, requests)
}

func (h *FriendHandler) ListOutgoing(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	requests, err := h.friends.GetOutgoingRequests(c.Request.Context(), *userID)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to load requests"})
		return
	}

	c.JSON(nethttp.StatusOK, requests)
}

func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	h.handleDecision(c, h.friends.AcceptRequest, "accepted", "accept", metrics.IncFriendAccept)
}

func (h *FriendHandler) DeclineRequest(c *gin.Context) {
	h.handleDecision(c, h.friends.DeclineRequest, "declined", "decline", metrics.IncFriendDecline)
}

func (h *FriendHandler) handleDecision(c *gin.Context, action func(ctx context.Context, requestID, userID int64) error, status, verb string, inc func(string)) {
	reqID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		inc(metrics.StatusFailed)
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	requestID := requestIDFromHeader(c)
	userID := userIDFromContext(c)
	if userID == nil {
		h.emitAudit(c.Request.Context(), "ERROR", "internal error", requestID, nil)
		inc(metrics.StatusFailed)
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	if err := action(ctx, reqID, *userID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.emitAudit(ctx, "ERROR", "friend request not found", requestID, userID)
			inc(metrics.StatusFailed)
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "request not found"})
		case errors.Is(err, repositories.ErrRequestForbidden):
			h.emitAudit(ctx, "ERROR", "not allowed to "+verb+" this request", requestID, userID)
			inc(metrics.StatusFailed)
			c.JSON(nethttp.StatusForbidden, gin.H{"error": "not allowed to " + verb + " this request"})
		case errors.Is(err, repositories.ErrRequestNotPending):
			h.emitAudit(ctx, "ERROR", "friend request is not pending", requestID, userID)
			inc(metrics.StatusFailed)
			c.JSON(nethttp.StatusConflict, gin.H{"error": "request is no longer pending"})
		default:
			h.emitAudit(ctx, "ERROR", "internal error", requestID, userID)
			inc(metrics.StatusFailed)
			c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to update request"})
		}
		return
	}

	h.emitAudit(ctx, "INFO", "Friend request "+status, requestID, userID)
	inc(metrics.StatusSuccess)
	c.JSON(nethttp.StatusOK, gin.H{"status": status})
}

func (h *FriendHandler) ListFriends(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	friends, err := h.friends.ListFriends(c.Request.Context(), *userID)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to fetch friends"})
		return
	}

	c.JSON(nethttp.StatusOK, friends)
}

func (h *FriendHandler) DeleteFriend(c *gin.Context) {
	friendID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid friend id"})
		return
	}

	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	areFriends, err := h.friends.AreFriends(ctx, *userID, friendID)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to check friendship"})
		return
	}
	if !areFriends {
		c.JSON(nethttp.StatusNotFound, gin.H{"error": "friendship not found"})
		return
	}

	if err := h.friends.DeleteFriendship(ctx, *userID, friendID); err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to delete friendship"})
		return
	}

	c.Status(nethttp.StatusNoContent)
}

func (h *FriendHandler) emitAudit(ctx context.Context, level, text, requestID string, userID *int64) {
	if h.audit == nil {
		return
	}
	h.audit.EmitAudit(ctx, level, text, requestID, userID)
}
