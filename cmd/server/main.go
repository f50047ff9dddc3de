package main

import (
	"fmt"
	"formsentry/internal/app"
	"formsentry/internal/handlers"
	"formsentry/internal/logger"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	log := logger.New("main")

	application, err := app.New()
	if err != nil {
		log.Er("failed to initialize application", err)
		os.Exit(1)
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Er("failed to close application", err)
		}
	}()

	server := fiber.New(fiber.Config{
		AppName:               "formsentry",
		DisableStartupMessage: true,
	})
	server.Use(recover.New())

	if err := handlers.Router(server, application); err != nil {
		log.Er("failed to register routes", err)
		os.Exit(1)
	}

	application.SweepService.Start()
	application.MetricsService.Serve(application.Config.MetricsPort)

	go func() {
		addr := fmt.Sprintf(":%d", application.Config.ServerPort)
		log.Info("Server listening", "addr", addr)
		if err := server.Listen(addr); err != nil {
			log.Er("server stopped", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	if err := server.Shutdown(); err != nil {
		log.Er("failed to shut down server", err)
	}
}
