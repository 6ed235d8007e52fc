package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/stridelabs/step_tracker/internal/battery"
	"github.com/stridelabs/step_tracker/internal/config"
	"github.com/stridelabs/step_tracker/internal/steps"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// wsHub fans each step report out to all connected WebSocket clients.
type wsHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func newWSHub() *wsHub {
	return &wsHub{clients: make(map[*websocket.Conn]bool)}
}

func (h *wsHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

func (h *wsHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// broadcast sends payload to every client, dropping the ones that fail.
func (h *wsHub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("web: websocket write error: %v", err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// RunWeb serves the step dashboard: a JSON API for the latest telemetry
// and a WebSocket feed pushing every step report as it arrives.
func RunWeb() error {
	cfg := config.Get()

	var (
		mu         sync.RWMutex
		lastReport steps.Report
		haveReport bool
		lastBatt   battery.Sample
		haveBatt   bool
	)
	hub := newWSHub()

	clientID := cfg.MQTTClientIDWeb
	if clientID == "" {
		clientID = "tracker-web-subscriber"
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	stepToken := client.Subscribe(cfg.TopicSteps, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r steps.Report
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("web: report unmarshal error: %v", err)
			return
		}
		mu.Lock()
		lastReport = r
		haveReport = true
		mu.Unlock()

		hub.broadcast(msg.Payload())
	})
	stepToken.Wait()
	if stepToken.Error() != nil {
		return stepToken.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicSteps)

	battToken := client.Subscribe(cfg.TopicBattery, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s battery.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("web: battery unmarshal error: %v", err)
			return
		}
		mu.Lock()
		lastBatt = s
		haveBatt = true
		mu.Unlock()
	})
	battToken.Wait()
	if battToken.Error() != nil {
		return battToken.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicBattery)

	// JSON API: latest step report
	http.HandleFunc("/api/steps", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		defer mu.RUnlock()

		if !haveReport {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(lastReport); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	// JSON API: latest battery sample
	http.HandleFunc("/api/battery", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		defer mu.RUnlock()

		if !haveBatt {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(lastBatt); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	// WebSocket: live step reports
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade error: %v", err)
			return
		}
		hub.add(conn)
		log.Printf("web: websocket client connected from %s", r.RemoteAddr)

		// Reader loop only detects close; clients never send data.
		go func() {
			defer hub.remove(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})

	// Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	port := cfg.WebServerPort
	if port == 0 {
		port = 8080
	}
	addr := fmt.Sprintf(":%d", port)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
