package database

import (
	"context"
	"fmt"
	"lexora/internal/domain/repository"
	"lexora/internal/platform/config"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	MongoClient *mongo.Client
	MongoDB     *mongo.Database
)

func ConnectMongo() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	MongoClient, err = mongo.Connect(ctx, options.Client().ApplyURI(config.AppConfig.MongoURI))
	if err != nil {
		log.Fatalf("Error opening MongoDB client: %v", err)
	}
	if err = MongoClient.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatalf("Error connecting to MongoDB: %v", err)
	}

	MongoDB = MongoClient.Database(config.AppConfig.MongoDB)
	if err = repository.EnsureMongoIndexes(ctx, MongoDB); err != nil {
		log.Fatalf("Error creating MongoDB indexes: %v", err)
	}

	fmt.Println("Successfully connected to MongoDB!")
}

func CloseMongo() {
	if MongoClient == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := MongoClient.Disconnect(ctx); err != nil {
		log.Printf("WARN: MongoDB disconnect: %v", err)
		return
	}
	fmt.Println("MongoDB connection closed.")
}
