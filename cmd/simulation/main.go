package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

// Scripted conversation client: walks a fresh account through onboarding and
// a few coaching turns against a locally running server.

var (
	baseURL     = envOr("SIM_BASE_URL", "http://localhost:3000/api/chat/v1")
	accessToken = os.Getenv("SIM_ACCESS_TOKEN")
)

type sendMessageRequest struct {
	Text     string `json:"text"`
	ClientAt int64  `json:"clientAt"`
}

type quickReply struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type sendMessageResponse struct {
	Data struct {
		Dropped      bool         `json:"dropped"`
		Reply        string       `json:"reply"`
		QuickReplies []quickReply `json:"quick_replies"`
		Onboarding   bool         `json:"onboarding"`
	} `json:"data"`
}

var (
	userColor  = color.New(color.FgCyan, color.Bold)
	botColor   = color.New(color.FgGreen)
	chipColor  = color.New(color.FgYellow)
	metaColor  = color.New(color.FgHiBlack)
	errorColor = color.New(color.FgRed, color.Bold)
)

func main() {
	fmt.Println("=== Running Coach Simulation Client ===")
	if accessToken == "" {
		log.Fatal("SIM_ACCESS_TOKEN is not set")
	}

	// Onboarding answers in question order, then coaching questions.
	script := []string{
		"Erik",
		"male",
		"1991",
		"intermediate",
		"4",
		"22:30",
		"Yes, a half marathon in October",
		"How should I structure this week's training?",
		"My knee feels a bit sore after yesterday's run",
	}

	if err := initSession(); err != nil {
		errorColor.Printf("init failed: %v\n", err)
	}

	for _, text := range script {
		userColor.Printf("\nUSER: ")
		fmt.Println(text)

		start := time.Now()
		res, err := sendMessage(text)
		elapsed := time.Since(start)

		if err != nil {
			errorColor.Printf("Error: %v\n", err)
			continue
		}
		if res.Data.Dropped {
			metaColor.Println("(dropped: turn already in flight)")
			continue
		}

		botColor.Printf("COACH (%v): ", elapsed.Round(time.Millisecond))
		fmt.Println(res.Data.Reply)
		for _, qr := range res.Data.QuickReplies {
			chipColor.Printf("  [%s]\n", qr.Label)
		}

		// Give the debounce window time to pass between scripted turns.
		time.Sleep(500 * time.Millisecond)
	}
}

func initSession() error {
	req, _ := http.NewRequest("POST", baseURL+"/init", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API Error %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func sendMessage(text string) (*sendMessageResponse, error) {
	payload := sendMessageRequest{
		Text:     text,
		ClientAt: time.Now().UnixMilli(),
	}
	jsonBytes, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", baseURL+"/message", bytes.NewBuffer(jsonBytes))
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API Error %d: %s", resp.StatusCode, string(body))
	}

	var res sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
