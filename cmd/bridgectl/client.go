package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// client wraps the toolbridge HTTP API.
type client struct {
	base string
	http *http.Client
}

func newClient(base string) *client {
	return &client{
		base: base,
		http: &http.Client{Timeout: 120 * time.Second},
	}
}

type toolListResponse struct {
	Tools []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"tools"`
	Count int `json:"count"`
}

type callResponse struct {
	Success bool   `json:"success"`
	Result  string `json:"result"`
	Error   string `json:"error,omitempty"`
}

type messageResponse struct {
	Response       string   `json:"response"`
	AvailableTools []string `json:"available_tools,omitempty"`
	Error          string   `json:"error,omitempty"`
}

func (c *client) printTools() error {
	var list toolListResponse
	if err := c.get("/tools", &list); err != nil {
		return err
	}
	for _, tool := range list.Tools {
		fmt.Printf("  %-18s %s\n", tool.Name, tool.Description)
	}
	fmt.Printf("%d tools available\n", list.Count)
	return nil
}

func (c *client) callTool(name, argsJSON string) error {
	args := map[string]interface{}{}
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return fmt.Errorf("arguments must be a JSON object: %v", err)
		}
	}

	payload := map[string]interface{}{
		"tool_name": name,
		"arguments": args,
	}
	var result callResponse
	if err := c.post("/tools/call", payload, &result); err != nil {
		return err
	}
	if !result.Success {
		fmt.Printf("Tool failed: %s\n", result.Error)
		return nil
	}
	fmt.Println(result.Result)
	return nil
}

func (c *client) sendMessage(text string) error {
	var result messageResponse
	if err := c.post("/llm/message", map[string]string{"message": text}, &result); err != nil {
		return err
	}
	fmt.Println(result.Response)
	return nil
}

func (c *client) sendMessageWithTools(text string) error {
	var result messageResponse
	if err := c.post("/llm/message-with-tools", map[string]string{"message": text}, &result); err != nil {
		return err
	}
	fmt.Println(result.Response)
	if len(result.AvailableTools) > 0 {
		fmt.Printf("(tools described to the model: %v)\n", result.AvailableTools)
	}
	return nil
}

func (c *client) get(path string, out interface{}) error {
	resp, err := c.http.Get(c.base + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func (c *client) post(path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := c.http.Post(c.base+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out interface{}) error {
	if resp.StatusCode >= 400 {
		var failure struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&failure); err == nil && failure.Error != "" {
			return fmt.Errorf("server returned %s: %s", resp.Status, failure.Error)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
