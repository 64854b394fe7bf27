// Seed walks a demo memoir through the whole flow against a running API:
// register, create a project and interviewee, start a module, answer
// questions, generate and approve the chapter, then export the PDF.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/mabel-app/mabel-backend/pkg/polling"
)

var (
	baseURL = getEnv("API_URL", "http://localhost:8080")
	client  = &http.Client{Timeout: 30 * time.Second}
	token   string
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	log.Println("🚀 Seeding demo memoir...")

	// Register a demo account (ignore conflict on rerun, just log in)
	email := fmt.Sprintf("demo+%d@mabel.app", time.Now().Unix())
	var session struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		AccessToken string `json:"access_token"`
	}
	must(post(ctx, "/v1/auth/register", map[string]interface{}{
		"email":    email,
		"password": "demo-password-1",
		"name":     "Demo User",
	}, &session))
	token = session.AccessToken
	log.Printf("✅ Registered %s", email)

	// Create a project
	var project struct {
		ID string `json:"id"`
	}
	must(post(ctx, "/v1/projects", map[string]interface{}{
		"title": "Grandma Ruth's Story",
	}, &project))
	log.Printf("✅ Project %s", project.ID)

	// Add the interviewee
	var interviewee struct {
		ID         string `json:"id"`
		Generation string `json:"generation"`
	}
	must(post(ctx, "/v1/projects/"+project.ID+"/interviewee", map[string]interface{}{
		"name":         "Ruth",
		"relationship": "grandmother",
		"birth_year":   1958,
		"topics":       []string{"childhood", "family", "career"},
	}, &interviewee))
	log.Printf("✅ Interviewee Ruth (%s)", interviewee.Generation)

	// Start the first module; question generation runs in the background
	var moduleJob struct {
		Module struct {
			ID string `json:"id"`
		} `json:"module"`
		Job struct {
			ID string `json:"id"`
		} `json:"job"`
	}
	must(post(ctx, "/v1/projects/"+project.ID+"/modules", map[string]interface{}{
		"title": "Early Years",
		"theme": "childhood",
	}, &moduleJob))
	log.Printf("⏳ Generating questions (job %s)...", moduleJob.Job.ID)
	waitForJob(ctx, moduleJob.Job.ID)

	// Answer just over half of the questions
	var module struct {
		ID        string `json:"id"`
		Questions []struct {
			ID       string `json:"id"`
			Question string `json:"question"`
		} `json:"questions"`
	}
	must(get(ctx, "/v1/projects/"+project.ID+"/modules/"+moduleJob.Module.ID, &module))
	log.Printf("✅ %d questions generated", len(module.Questions))

	answered := len(module.Questions)/2 + 1
	for i := 0; i < answered; i++ {
		q := module.Questions[i]
		must(patch(ctx, "/v1/projects/"+project.ID+"/modules/"+module.ID+"/questions/"+q.ID, map[string]interface{}{
			"response": fmt.Sprintf("Well, let me tell you about that. %s It was a different time back then, and we made do with what we had.", q.Question),
		}, nil))
	}
	log.Printf("✅ Answered %d of %d questions", answered, len(module.Questions))

	// Generate the chapter
	var chapterJob struct {
		Chapter struct {
			ID      string `json:"id"`
			Version int    `json:"version"`
		} `json:"chapter"`
		Job struct {
			ID string `json:"id"`
		} `json:"job"`
	}
	must(post(ctx, "/v1/projects/"+project.ID+"/modules/"+module.ID+"/chapter/generate", map[string]interface{}{
		"settings": map[string]interface{}{"person": "first", "tone": "warm"},
	}, &chapterJob))
	log.Printf("⏳ Generating chapter v%d (job %s)...", chapterJob.Chapter.Version, chapterJob.Job.ID)
	waitForJob(ctx, chapterJob.Job.ID)
	log.Println("✅ Chapter generated")

	// Approve the module
	must(post(ctx, "/v1/projects/"+project.ID+"/modules/"+module.ID+"/approve", nil, nil))
	log.Println("✅ Module approved")

	// Export the memoir PDF
	pdfBytes, err := download(ctx, "/v1/projects/"+project.ID+"/export")
	if err != nil {
		log.Fatalf("Failed to export memoir: %v", err)
	}
	outPath := "memoir.pdf"
	if err := os.WriteFile(outPath, pdfBytes, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", outPath, err)
	}
	log.Printf("✅ Exported %s (%d bytes)", outPath, len(pdfBytes))
	log.Println("🎉 Demo memoir complete")
}

// waitForJob polls the job endpoint until it reaches a terminal status
func waitForJob(ctx context.Context, jobID string) {
	fetch := func(ctx context.Context) (polling.Snapshot, error) {
		var job struct {
			Status   string `json:"status"`
			Progress int    `json:"progress"`
			Error    string `json:"error"`
		}
		if err := get(ctx, "/v1/jobs/"+jobID, &job); err != nil {
			return polling.Snapshot{}, err
		}
		return polling.Snapshot{
			Status:   polling.Status(job.Status),
			Progress: job.Progress,
			Error:    job.Error,
		}, nil
	}

	snap, err := polling.WaitForCompletion(ctx, fetch, polling.Options{
		Interval: time.Second,
		OnPoll: func(s polling.Snapshot) {
			log.Printf("   ... %s (%d%%)", s.Status, s.Progress)
		},
	})
	if err != nil {
		log.Fatalf("Job %s did not complete: %v (last status %s)", jobID, err, snap.Status)
	}
}

func post(ctx context.Context, path string, body, out interface{}) error {
	return do(ctx, http.MethodPost, path, body, out)
}

func patch(ctx context.Context, path string, body, out interface{}) error {
	return do(ctx, http.MethodPatch, path, body, out)
}

func get(ctx context.Context, path string, out interface{}) error {
	return do(ctx, http.MethodGet, path, nil, out)
}

func do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}

	// Responses are wrapped in a data envelope
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return err
	}
	return json.Unmarshal(envelope.Data, out)
}

func download(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("GET %s: %d %s", path, resp.StatusCode, raw)
	}
	return io.ReadAll(resp.Body)
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
