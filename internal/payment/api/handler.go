package api

import (
	"errors"
	"fmt"
	"net/http"

	"ms-marketplace/internal/auth"
	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"
	"ms-marketplace/internal/order"
	"ms-marketplace/internal/payment"

	"github.com/gin-gonic/gin"
)

// Handler exposes the payment surface on its own gin engine, mounted under the
// main router.
type Handler struct {
	Service   *payment.Service
	JWTSecret string
	Logger    *logger.Logger
}

func NewHandler(service *payment.Service, jwtSecret string, log *logger.Logger) *Handler {
	return &Handler{Service: service, JWTSecret: jwtSecret, Logger: log}
}

// Routes builds the gin engine mounted under /api/payments.
func (h *Handler) Routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), h.authRequired())

	router.POST("/", h.CreatePayment)
	router.POST("/confirm", h.ConfirmPayment)
	return router
}

func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := auth.ExtractTokenFromRequest(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		claims, err := auth.VerifyToken(h.JWTSecret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("user_id", claims.Subject)
		c.Next()
	}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrNotFound), errors.Is(err, payment.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, payment.ErrNotPayable), errors.Is(err, payment.ErrIntentNotPaid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, order.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}

func (h *Handler) CreatePayment(c *gin.Context) {
	var req models.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	buyerID := c.GetString("user_id")
	record, clientSecret, err := h.Service.CreatePayment(c.Request.Context(), buyerID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreatePayment order=%s: %v", req.OrderID, err))
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"payment":       record,
		"client_secret": clientSecret,
	})
}

func (h *Handler) ConfirmPayment(c *gin.Context) {
	var req models.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	buyerID := c.GetString("user_id")
	ord, err := h.Service.ConfirmPayment(c.Request.Context(), buyerID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ConfirmPayment order=%s: %v", req.OrderID, err))
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ord)
}
