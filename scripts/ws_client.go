// Package main runs a demo client: request a dispatch plan, then replay the
// vehicle track stream over WebSocket.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"

	"github.com/gorilla/websocket"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	// Request a plan against the built-in demo graph
	body := []byte(`{"depot":1,"incidents":[2,3,4],"vehicles":2}`)
	req, _ := http.NewRequest(http.MethodPost, base+"/v1/dispatch", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Role", "dispatcher")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	var plan struct {
		ID         string  `json:"id"`
		TotalCostM float64 `json:"totalCostM"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&plan); err != nil {
		log.Fatal(err)
	}
	if plan.ID == "" {
		log.Fatal("no plan returned")
	}
	log.Printf("plan %s total=%.0fm", plan.ID, plan.TotalCostM)

	// Replay the track stream
	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/plans/" + plan.ID + "/track/ws", RawQuery: "intervalMs=100"}
	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	for {
		var pt struct {
			Vehicle int   `json:"vehicle"`
			Seq     int   `json:"seq"`
			Node    int64 `json:"node"`
		}
		if err := c.ReadJSON(&pt); err != nil {
			log.Printf("stream closed: %v", err)
			return
		}
		log.Printf("vehicle=%d seq=%d node=%d", pt.Vehicle, pt.Seq, pt.Node)
	}
}
