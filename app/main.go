package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tasktime/app/config"
	"tasktime/app/controllers"
	"tasktime/app/routes"
	"tasktime/app/services"

	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load(os.Getenv("TASKTIME_CONFIG"))
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize the storage backend
	st, err := config.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize storage: ", err)
	}
	defer st.Close(context.Background())

	// Initialize the service and controller layers
	router := mux.NewRouter()
	routes.RegisterRoutes(router, routes.Controllers{
		Projects:    controllers.NewProjectController(services.NewProjectService(st)),
		Tags:        controllers.NewTagController(services.NewTagService(st)),
		Tasks:       controllers.NewTaskController(services.NewTaskService(st)),
		TimeEntries: controllers.NewTimeEntryController(services.NewTimeEntryService(st)),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server is running on http://%s (storage: %s)", cfg.Server.Addr, cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown: %v", err)
	}
}
