// Command wstap opens authenticated websocket connections against a running
// Aurelo server and prints the realtime events it receives. Useful for
// watching notification fan-out while exercising the API from another
// terminal, or for light connection load testing with -clients > 1.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	EventsReceived       int64
	Errors               int64
}

var metrics Metrics

func main() {
	host := flag.String("host", "localhost:8460", "API host:port")
	email := flag.String("email", "", "account email to log in with")
	password := flag.String("password", "Password123!!", "account password")
	clients := flag.Int("clients", 1, "number of concurrent connections")
	duration := flag.Duration("duration", 0, "how long to stay connected (0 = until interrupted)")
	quiet := flag.Bool("quiet", false, "suppress per-event output, only print metrics")
	flag.Parse()

	if *email == "" {
		log.Fatal("-email is required")
	}

	token, err := login(*host, *email, *password)
	if err != nil {
		log.Fatalf("login failed: %v", err)
	}
	log.Printf("logged in as %s", *email)

	stopChan := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go runClient(*host, token, i, *quiet, stopChan, &wg)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	if *duration > 0 {
		select {
		case <-time.After(*duration):
		case <-interrupt:
		}
	} else {
		<-interrupt
	}

	close(stopChan)
	wg.Wait()
	printMetrics()
}

func login(host, email, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Post(fmt.Sprintf("http://%s/api/auth/login", host), "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.Token == "" {
		return "", fmt.Errorf("login response contained no token")
	}

	return result.Token, nil
}

func getTicket(host, token string) (string, error) {
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("http://%s/api/ws/ticket", host), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ticket issuance failed with status %d", resp.StatusCode)
	}

	var result struct {
		Ticket string `json:"ticket"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	return result.Ticket, nil
}

func runClient(host, token string, id int, quiet bool, stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	// Tickets are single-use, so each connection needs its own.
	ticket, err := getTicket(host, token)
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		log.Printf("client %d: ticket: %v", id, err)
		return
	}

	u := url.URL{Scheme: "ws", Host: host, Path: "/api/ws/", RawQuery: "ticket=" + ticket}

	c, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		log.Printf("client %d: dial: %v", id, err)
		return
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = c.Close() }()

	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)
	if !quiet {
		log.Printf("client %d: connected", id)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}
			atomic.AddInt64(&metrics.EventsReceived, 1)
			if !quiet {
				printEvent(id, msg)
			}
		}
	}()

	select {
	case <-stopChan:
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	case <-done:
	}
}

func printEvent(id int, msg []byte) {
	var event struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(msg, &event); err != nil || event.Type == "" {
		log.Printf("client %d: %s", id, msg)
		return
	}
	log.Printf("client %d: [%s] %s", id, event.Type, event.Payload)
}

func printMetrics() {
	log.Println("Session summary")
	log.Printf("  connections attempted:  %d", atomic.LoadInt64(&metrics.ConnectionsAttempted))
	log.Printf("  connections successful: %d", atomic.LoadInt64(&metrics.ConnectionsSuccess))
	log.Printf("  connections failed:     %d", atomic.LoadInt64(&metrics.ConnectionsFailed))
	log.Printf("  events received:        %d", atomic.LoadInt64(&metrics.EventsReceived))
	log.Printf("  errors:                 %d", atomic.LoadInt64(&metrics.Errors))
}
