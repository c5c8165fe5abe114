// File: campflow/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campflow/config"
	"campflow/cron"
	"campflow/database"
	"campflow/database/repository/bookingrec"
	"campflow/handlers"
	"campflow/routes"
	"campflow/services/cart"
	"campflow/services/gateway"
	"campflow/services/reservation"
	"campflow/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	bookingRepo := bookingrec.NewMongoBookingRecordRepo()
	cartTTL := time.Duration(config.AppConfig.CartTTLHours) * time.Hour
	cartStore := cart.NewRedisStore(utils.GetCacheClient(), cartTTL)

	// upstream collaborators.
	bookingAPI := gateway.NewHTTPBookingAPI(config.AppConfig.BookingAPIURL, logger)
	paymentGateway := gateway.NewHTTPPaymentGateway(config.AppConfig.PaymentAPIURL, logger)

	// services.
	expiryClient := cron.NewExpiryClient()
	defer expiryClient.Close()
	cron.InitExpiryWorker(bookingRepo)

	pipeline := reservation.NewSubmissionPipeline(bookingAPI, paymentGateway, bookingRepo, expiryClient, logger)
	flowManager := reservation.NewFlowManager(pipeline, logger)

	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		CartStore:   cartStore,
		Flows:       flowManager,
		BookingRepo: bookingRepo,
		Pipeline:    pipeline,

		// Cart endpoints.
		AddCartItemHandler:    handlers.AddCartItem(cartStore),
		ListCartItemsHandler:  handlers.ListCartItems(cartStore),
		UpdateCartItemHandler: handlers.UpdateCartItem(cartStore),
		RemoveCartItemHandler: handlers.RemoveCartItem(cartStore),

		// Flow endpoints.
		StartFlowHandler:      handlers.StartFlow(cartStore, flowManager),
		GetFlowHandler:        handlers.GetFlow(flowManager),
		StepValidatedHandler:  handlers.StepValidated(flowManager),
		StepCompletedHandler:  handlers.StepCompleted(flowManager),
		NextStepHandler:       handlers.NextStep(flowManager),
		PreviousStepHandler:   handlers.PreviousStep(flowManager),
		GoToStepHandler:       handlers.GoToStep(flowManager),
		SwitchItemHandler:     handlers.SwitchItem(flowManager),
		RemoveFlowItemHandler: handlers.RemoveFlowItem(flowManager),
		ApplyFormHandler:      handlers.ApplyForm(flowManager),
		SubmitFlowHandler:     handlers.SubmitFlow(flowManager),

		// Booking record endpoints.
		ListBookingsHandler:  handlers.ListBookings(bookingRepo),
		GetBookingHandler:    handlers.GetBooking(bookingRepo),
		CancelBookingHandler: handlers.CancelBooking(bookingRepo),
		RetryPaymentHandler:  handlers.RetryPayment(bookingRepo, pipeline),

		// Catalogue endpoints.
		AccessPointsHandler: handlers.GetAccessPoints(),

		// Health.
		HealthHandler: handlers.Health(),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
