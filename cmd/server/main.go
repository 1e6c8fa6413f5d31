package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lexora/internal/api"
	"lexora/internal/app/service"
	"lexora/internal/app/worker"
	"lexora/internal/common/security"
	"lexora/internal/domain/repository"
	"lexora/internal/domain/repository/memory"
	"lexora/internal/platform/config"
	"lexora/internal/platform/database"
	"lexora/internal/platform/queue"
	"lexora/internal/platform/storage"
)

type repositories struct {
	users      repository.UserRepository
	blogs      repository.BlogRepository
	activities repository.ActivityRepository
}

// openStore connects the backend selected by STORE_DRIVER.
func openStore() (repositories, func()) {
	switch config.AppConfig.StoreDriver {
	case config.StoreDriverPostgres:
		database.Connect()
		return repositories{
			users:      repository.NewPgUserRepository(database.DB),
			blogs:      repository.NewPgBlogRepository(database.DB),
			activities: repository.NewPgActivityRepository(database.DB),
		}, database.Close
	case config.StoreDriverMongo:
		database.ConnectMongo()
		return repositories{
			users:      repository.NewMongoUserRepository(database.MongoDB),
			blogs:      repository.NewMongoBlogRepository(database.MongoDB),
			activities: repository.NewMongoActivityRepository(database.MongoDB),
		}, database.CloseMongo
	case config.StoreDriverMemory:
		log.Println("WARN: using the in-memory store, data is lost on restart")
		s := memory.NewStore()
		return repositories{
			users:      memory.NewUserRepository(s),
			blogs:      memory.NewBlogRepository(s),
			activities: memory.NewActivityRepository(s),
		}, func() {}
	default:
		log.Fatalf("Unknown STORE_DRIVER %q", config.AppConfig.StoreDriver)
		return repositories{}, nil
	}
}

// openImageStore returns the image store and, for local storage, the
// handler serving it.
func openImageStore() (storage.ImageStore, http.Handler) {
	switch config.AppConfig.UploadDriver {
	case config.UploadDriverLocal:
		local, err := storage.NewLocalStore(config.AppConfig.UploadDir, config.AppConfig.UploadPublicPath)
		if err != nil {
			log.Fatalf("Could not prepare upload directory: %v", err)
		}
		return local, local.Handler()
	case config.UploadDriverAzure:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		az, err := storage.NewAzureStore(ctx, config.AppConfig.AzureConnString, config.AppConfig.AzureContainer, config.AppConfig.AzurePublicURLPrefix)
		if err != nil {
			log.Fatalf("Could not connect to Azure Blob Storage: %v", err)
		}
		return az, nil
	default:
		log.Fatalf("Unknown UPLOAD_DRIVER %q", config.AppConfig.UploadDriver)
		return nil, nil
	}
}

func main() {
	// 1. Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Store
	repos, closeStore := openStore()
	defer closeStore()
	fmt.Printf("Store %q ready.\n", config.AppConfig.StoreDriver)

	// 4. Redis (optional)
	queue.ConnectRedis()
	defer queue.CloseRedis()

	// 5. Images
	images, uploads := openImageStore()

	// 6. Token denylist and activity recording
	var denylist security.Denylist = security.NewMemoryDenylist()
	direct := service.NewDirectRecorder(repos.activities)
	var recorder service.ActivityRecorder = direct

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	workerDone := make(chan struct{})
	if queue.RDB != nil {
		denylist = security.NewRedisDenylist(queue.RDB)
		recorder = service.NewQueueRecorder(queue.RDB, config.AppConfig.ActivityQueueName, direct)
		activityWorker := worker.NewActivityWorker(queue.RDB, repos.activities, config.AppConfig.ActivityQueueName)
		go func() {
			defer close(workerDone)
			activityWorker.Start(workerCtx)
		}()
		fmt.Println("Activity worker started.")
	} else {
		close(workerDone)
	}

	// 7. Services
	authService := service.NewAuthService(repos.users, recorder, denylist)
	blogService := service.NewBlogService(repos.blogs, repos.users, images, recorder)
	userService := service.NewUserService(repos.users, images)
	adminService := service.NewAdminService(repos.users, repos.blogs, repos.activities, blogService)

	// 8. Router & HTTP server
	router := api.NewRouter(api.Services{
		Auth:  authService,
		Blogs: blogService,
		Users: userService,
		Admin: adminService,
	}, denylist, uploads)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()

	<-stop

	log.Println("Shutting down server...")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server shutdown failed: %v", err)
	}
	<-workerDone
	direct.Wait()

	log.Println("Server and worker stopped gracefully.")
}
