package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

var (
	pass = color.New(color.FgGreen, color.Bold)
	fail = color.New(color.FgRed, color.Bold)
	info = color.New(color.FgCyan)
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func request(method, url, token string, body interface{}) ([]byte, int, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return respBody, resp.StatusCode, err
}

func main() {
	email := fmt.Sprintf("smoke-%d@example.com", time.Now().Unix())

	// 1. Register + Login
	info.Println("== Register ==")
	if _, code, err := request("POST", "/auth/register", "", map[string]string{
		"email": email, "password": "smoke-password-1", "full_name": "Smoke Tester",
	}); err != nil || code != 200 {
		fail.Printf("register failed (code %d, err %v)\n", code, err)
		os.Exit(1)
	}
	pass.Println("registered")

	info.Println("== Login ==")
	body, code, err := request("POST", "/auth/login", "", map[string]string{
		"email": email, "password": "smoke-password-1",
	})
	if err != nil || code != 200 {
		fail.Printf("login failed (code %d, err %v)\n", code, err)
		os.Exit(1)
	}
	var loginEnv envelope
	json.Unmarshal(body, &loginEnv)
	var login struct {
		Token string `json:"token"`
	}
	json.Unmarshal(loginEnv.Data, &login)
	pass.Println("logged in")

	// 2. Upload a contract
	info.Println("== Upload ==")
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "smoke.txt")
	fw.Write([]byte(strings.Repeat("The employee shall receive an annual salary reviewed each year. ", 60)))
	mw.WriteField("job_title", "Software Engineer")
	mw.WriteField("years_experience", "5")
	mw.Close()

	req, _ := http.NewRequest("POST", baseURL+"/contract/v1", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+login.Token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		fail.Printf("upload failed (err %v)\n", err)
		os.Exit(1)
	}
	uploadBody, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	var uploadEnv envelope
	json.Unmarshal(uploadBody, &uploadEnv)
	var upload struct {
		Id     string `json:"id"`
		Status string `json:"status"`
	}
	json.Unmarshal(uploadEnv.Data, &upload)
	pass.Printf("uploaded, contract %s (%s)\n", upload.Id, upload.Status)

	// 3. Poll until the analysis reaches a terminal state
	info.Println("== Poll status ==")
	status := upload.Status
	for i := 0; i < 60 && status != "done" && status != "error"; i++ {
		time.Sleep(2 * time.Second)
		body, _, _ := request("GET", "/contract/v1/"+upload.Id, login.Token, nil)
		var env envelope
		json.Unmarshal(body, &env)
		var detail struct {
			Status string `json:"status"`
		}
		json.Unmarshal(env.Data, &detail)
		status = detail.Status
		fmt.Printf("  status: %s\n", status)
	}
	if status != "done" {
		fail.Printf("analysis did not finish (status %s)\n", status)
		os.Exit(1)
	}
	pass.Println("analysis done")

	// 4. Stream a chat turn
	info.Println("== Chat ==")
	chatPayload, _ := json.Marshal(map[string]interface{}{
		"message": "What does this contract say about salary?",
		"history": []interface{}{},
	})
	chatReq, _ := http.NewRequest("POST", baseURL+"/chat/v1/"+upload.Id, bytes.NewReader(chatPayload))
	chatReq.Header.Set("Content-Type", "application/json")
	chatReq.Header.Set("Authorization", "Bearer "+login.Token)
	chatResp, err := http.DefaultClient.Do(chatReq)
	if err != nil {
		fail.Printf("chat request failed: %v\n", err)
		os.Exit(1)
	}
	defer chatResp.Body.Close()

	scanner := bufio.NewScanner(chatResp.Body)
	got := false
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			break
		}
		got = true
	}
	if !got {
		fail.Println("no chat deltas received")
		os.Exit(1)
	}
	pass.Println("chat streamed")

	pass.Println("ALL CHECKS PASSED")
}
