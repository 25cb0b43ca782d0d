package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/IBM/sarama"

	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/kafka"
)

var playerPrefixes = []string{
	"Maple", "Willow", "Clover", "Juniper", "Hazel", "Sage", "Poppy", "Rowan", "Aspen", "Fern",
	"Briar", "Olive", "Ivy", "Basil", "Cedar", "Daisy", "Ember", "Flint", "Hollow", "Laurel",
}

var petNames = []string{"biscuit", "mochi", "pepper", "noodle", "waffle", "pickle", "toast", "bean"}

var actions = []domain.ActionType{domain.ActionFeed, domain.ActionSleep, domain.ActionPlay, domain.ActionChat}

func getPlayerName(idx int) string {
	prefixIdx := idx % len(playerPrefixes)
	suffix := idx/len(playerPrefixes) + 1
	return fmt.Sprintf("%s%d", playerPrefixes[prefixIdx], suffix)
}

func getPetName(idx int) string {
	return petNames[idx%len(petNames)]
}

// adoptAll registers every generated pet through the HTTP API so that the
// streamed actions land on known pets.
func adoptAll(baseURL string, players, petsPerPlayer int) error {
	client := &http.Client{Timeout: 5 * time.Second}
	for p := 0; p < players; p++ {
		for i := 0; i < petsPerPlayer; i++ {
			body, _ := json.Marshal(map[string]string{"pet_id": getPetName(i)})
			url := fmt.Sprintf("%s/api/v1/players/%s/pets", strings.TrimRight(baseURL, "/"), getPlayerName(p))
			resp, err := client.Post(url, "application/json", bytes.NewReader(body))
			if err != nil {
				return fmt.Errorf("adopting %s for %s: %w", getPetName(i), getPlayerName(p), err)
			}
			resp.Body.Close()
		}
	}
	return nil
}

func main() {
	brokers := flag.String("brokers", "localhost:9094", "Kafka brokers (comma-separated)")
	topic := flag.String("topic", "pet-actions", "Kafka topic")
	totalPlayers := flag.Int("players", 100, "Total number of players")
	petsPerPlayer := flag.Int("pets", 2, "Pets per player")
	actionsPerSecond := flag.Int("rate", 50, "Actions per second")
	goalRate := flag.Int("goal-rate", 20, "Percent of actions that achieved a goal")
	duration := flag.Duration("duration", 0, "Duration to run (0 = forever)")
	adoptURL := flag.String("adopt-url", "", "Server base URL used to adopt pets before streaming (empty = skip)")
	flag.Parse()

	if *totalPlayers <= 0 || *petsPerPlayer <= 0 || *actionsPerSecond <= 0 {
		log.Fatal("players, pets and rate must be positive")
	}
	brokerList := strings.Split(*brokers, ",")

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println("  🐾 Kafka Pet Action Producer")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("  Brokers:          %s\n", *brokers)
	fmt.Printf("  Topic:            %s\n", *topic)
	fmt.Printf("  Players:          %d\n", *totalPlayers)
	fmt.Printf("  Pets per player:  %d\n", *petsPerPlayer)
	fmt.Printf("  Actions/sec:      %d\n", *actionsPerSecond)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	if *adoptURL != "" {
		fmt.Printf("Adopting %d pets via %s...\n", *totalPlayers**petsPerPlayer, *adoptURL)
		if err := adoptAll(*adoptURL, *totalPlayers, *petsPerPlayer); err != nil {
			log.Fatalf("Failed to adopt pets: %v", err)
		}
		fmt.Println("✓ Pets adopted")
		fmt.Println()
	}

	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Flush.Frequency = 100 * time.Millisecond
	config.Producer.Flush.Messages = 100
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(brokerList, config)
	if err != nil {
		log.Fatalf("Failed to create producer: %v", err)
	}

	var successCount, errorCount int64
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range producer.Successes() {
			atomic.AddInt64(&successCount, 1)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for err := range producer.Errors() {
			atomic.AddInt64(&errorCount, 1)
			log.Printf("Producer error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	shutdown := func(reason string) {
		fmt.Printf("\n\n%s\n", reason)
		close(done)
		producer.AsyncClose()
		wg.Wait()
		fmt.Printf("\n✓ Completed. Sent: %d, Errors: %d\n", atomic.LoadInt64(&successCount), atomic.LoadInt64(&errorCount))
	}

	sendMessage := func(msg kafka.ActionMessage) {
		data, err := json.Marshal(msg)
		if err != nil {
			log.Printf("Failed to marshal message: %v", err)
			return
		}

		// Keyed by player so one player's actions stay ordered on one partition
		pm := &sarama.ProducerMessage{
			Topic: *topic,
			Key:   sarama.StringEncoder(msg.PlayerID),
			Value: sarama.ByteEncoder(data),
		}

		select {
		case producer.Input() <- pm:
		case <-done:
		}
	}

	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	ticker := time.NewTicker(time.Second / time.Duration(*actionsPerSecond))
	defer ticker.Stop()

	statsTicker := time.NewTicker(5 * time.Second)
	defer statsTicker.Stop()

	var endTime time.Time
	if *duration > 0 {
		endTime = time.Now().Add(*duration)
	}

	var actionCount int64

	for {
		select {
		case <-sigChan:
			shutdown("Shutting down...")
			return

		case <-ticker.C:
			if *duration > 0 && time.Now().After(endTime) {
				shutdown("Duration reached, shutting down...")
				return
			}

			action := actions[rand.Intn(len(actions))]
			msg := kafka.ActionMessage{
				PlayerID:     getPlayerName(rand.Intn(*totalPlayers)),
				PetID:        getPetName(rand.Intn(*petsPerPlayer)),
				Action:       string(action),
				AchievedGoal: rand.Intn(100) < *goalRate,
			}
			if action == domain.ActionFeed || action == domain.ActionSleep {
				msg.StatBoost = rand.Intn(3) + 1
			}
			sendMessage(msg)
			atomic.AddInt64(&actionCount, 1)

		case <-statsTicker.C:
			fmt.Printf("[%s] Actions: %d | Sent: %d | Errors: %d\n",
				time.Now().Format("15:04:05"),
				atomic.LoadInt64(&actionCount),
				atomic.LoadInt64(&successCount),
				atomic.LoadInt64(&errorCount),
			)
		}
	}
}
