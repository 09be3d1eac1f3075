package lib

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient replaces the shared instance, used by tests.
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

// CarDocument is the search-index mirror of a rentable car. Every car
// create/update/delete keeps the mirror in sync; the catalog search endpoint
// reads from here instead of joining three tables per request.
type CarDocument struct {
	ID                uint    `json:"id"`
	PricePerDay       float64 `json:"price_per_day"`
	AvailableQuantity int     `json:"available_quantity"`
	Name              string  `json:"name"`
	Year              string  `json:"year"`
	Type              string  `json:"type"`
	Description       string  `json:"description"`
	NumberOfSeats     uint    `json:"number_of_seats"`
	TransmissionType  string  `json:"transmission_type"`
	FuelType          string  `json:"fuel_type"`
	PrimaryImageUrl   string  `json:"primary_image_url"`
	Manufacturer      string  `json:"manufacturer"`
}

func carDocumentKey(id uint) string {
	return fmt.Sprintf("cars:%d", id)
}

func IndexCarDocument(doc *CarDocument) error {
	rd := GetRedisClient()
	if _, err := rd.JSONSet(context.Background(), carDocumentKey(doc.ID), "$", doc).Result(); err != nil {
		log.Printf("[redis] Error indexing car [%d]: %s\n", doc.ID, err.Error())
		return err
	}
	return nil
}

func RemoveCarDocument(id uint) error {
	rd := GetRedisClient()
	if _, err := rd.Del(context.Background(), carDocumentKey(id)).Result(); err != nil {
		log.Printf("[redis] Error removing car [%d] from index: %s\n", id, err.Error())
		return err
	}
	return nil
}

// SearchCarDocuments returns every indexed car whose name, manufacturer or
// type contains the query, case-insensitive. An empty query matches all.
func SearchCarDocuments(ctx context.Context, query string) ([]CarDocument, error) {
	rd := GetRedisClient()
	q := strings.ToLower(query)
	docs := make([]CarDocument, 0)
	iter := rd.Scan(ctx, 0, "cars:*", 100).Iterator()
	for iter.Next(ctx) {
		val := rd.JSONGet(ctx, iter.Val()).Val()
		if val == "" {
			continue
		}
		var doc CarDocument
		if err := json.Unmarshal([]byte(val), &doc); err != nil {
			log.Printf("[redis] Error reading car document [%s]: %s\n", iter.Val(), err.Error())
			continue
		}
		if q == "" ||
			strings.Contains(strings.ToLower(doc.Name), q) ||
			strings.Contains(strings.ToLower(doc.Manufacturer), q) ||
			strings.Contains(strings.ToLower(doc.Type), q) {
			docs = append(docs, doc)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
