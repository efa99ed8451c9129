package routes

import (
	"payment-service/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterPaymentRoutes(r *gin.Engine, pc *controllers.PaymentController) {
	r.GET("/healthz", pc.Health)

	v1 := r.Group("/v1")
	v1.POST("/payments/charge", pc.Charge)
	v1.GET("/payments", pc.ListPayments)
	v1.GET("/payments/:id", pc.GetPayment)
}
