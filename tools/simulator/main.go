package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"golang.org/x/time/rate"
)

// Telemetry topics by category, matching the worker defaults.
var topics = map[string]string{
	"SPAT": "connectedvehicle.spat",
	"BSM":  "connectedvehicle.bsm",
	"SRM":  "connectedvehicle.srm",
	"TIM":  "connectedvehicle.tim",
}

var intersections = []string{"int-0001", "int-0002", "int-0003", "int-0042"}

func main() {
	brokers := flag.String("brokers", "localhost:9092", "Comma-separated Kafka brokers")
	concurrency := flag.Int("c", 4, "Number of concurrent producers")
	duration := flag.Duration("d", 30*time.Second, "Duration of the simulation")
	mps := flag.Int("mps", 500, "Messages per second limit")
	badRatio := flag.Float64("bad", 0.05, "Fraction of unknown/non-parseable envelopes")
	flag.Parse()

	log.Printf("Simulating telemetry on %s", *brokers)
	log.Printf("Concurrency: %d, Duration: %s, MPS: %d, bad ratio: %.2f", *concurrency, *duration, *mps, *badRatio)

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(strings.Split(*brokers, ",")...),
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
	}
	defer writer.Close()

	limiter := rate.NewLimiter(rate.Limit(*mps), 100)
	categories := make([]string, 0, len(topics))
	for cat := range topics {
		categories = append(categories, cat)
	}

	var wg sync.WaitGroup
	var sent, failed atomic.Int64
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))

			for {
				if err := limiter.Wait(ctx); err != nil {
					return
				}
				category := categories[rng.Intn(len(categories))]
				msg := kafkago.Message{
					Topic: topics[category],
					Key:   []byte(uuid.NewString()),
					Value: randomEnvelope(rng, category, *badRatio),
				}
				if err := writer.WriteMessages(ctx, msg); err != nil {
					if ctx.Err() != nil {
						return
					}
					failed.Add(1)
					continue
				}
				sent.Add(1)
			}
		}(time.Now().UnixNano() + int64(i))
	}

	wg.Wait()
	log.Printf("Done. Sent: %d, Failed: %d", sent.Load(), failed.Load())
}

func randomEnvelope(rng *rand.Rand, category string, badRatio float64) []byte {
	roll := rng.Float64()
	switch {
	case roll < badRatio/2:
		return []byte(fmt.Sprintf(`{"Type":"%s","Data":"%x","UnErrorType":"simulated unknown shape"}`,
			category, rng.Int63()))
	case roll < badRatio:
		return []byte(fmt.Sprintf(`{"Type":"%s","Data":"%x","NpErrorType":"simulated decode failure","Cause":"truncated frame"}`,
			category, rng.Int63()))
	default:
		return []byte(fmt.Sprintf(`{"intersectionId":"%s","messageId":"%s","speed":%.1f,"heading":%d,"generatedAt":"%s"}`,
			intersections[rng.Intn(len(intersections))],
			uuid.NewString(),
			rng.Float64()*30,
			rng.Intn(360),
			time.Now().UTC().Format(time.RFC3339Nano)))
	}
}
