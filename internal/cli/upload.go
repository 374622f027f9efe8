package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/dfspersona/internal/domain/types"
	"github.com/okian/dfspersona/pkg/logger"
)

// ErrJobFailed is returned when an async upload ends in the failed state.
var ErrJobFailed = errors.New("analysis job failed")

// apiError is the error body returned by the server.
type apiError struct {
	Status int    `json:"-"`
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func (e *apiError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d %s: %s", e.Status, e.Code, e.Detail)
}

// Client talks to a running dfspersona server.
type Client struct {
	baseURL string
	http    *http.Client
	poll    time.Duration
}

// NewClient returns a client for baseURL. Timeout bounds each request.
func NewClient(baseURL string, timeout, poll time.Duration) *Client {
	if poll <= 0 {
		poll = 250 * time.Millisecond
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		poll:    poll,
	}
}

// Analyze posts an export to /analyze and returns the stored analysis.
func (c *Client) Analyze(ctx context.Context, filename string, body []byte) (types.Analysis, error) {
	var out types.Analysis
	err := c.postFile(ctx, "/analyze", filename, body, &out)
	return out, err
}

// Submit posts an export to /uploads and waits until the job settles.
func (c *Client) Submit(ctx context.Context, filename string, body []byte) (types.Job, error) {
	var accepted struct {
		types.Job
		Duplicate bool `json:"duplicate"`
	}
	if err := c.postFile(ctx, "/uploads", filename, body, &accepted); err != nil {
		return types.Job{}, err
	}
	logger.Get().Debug(ctx, "upload accepted",
		logger.String("job_id", accepted.ID),
		logger.Bool("duplicate", accepted.Duplicate))

	job := accepted.Job
	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()
	for job.State == types.JobQueued || job.State == types.JobProcessing {
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
		if err := c.get(ctx, "/uploads/"+job.ID, &job); err != nil {
			return job, err
		}
	}
	if job.State == types.JobFailed {
		return job, fmt.Errorf("%w: %s", ErrJobFailed, job.Error)
	}
	return job, nil
}

func (c *Client) postFile(ctx context.Context, path, filename string, body []byte, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(body); err != nil {
		return fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &apiError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		return apiErr
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func newUploadCommand() *cobra.Command {
	var (
		server  string
		async   bool
		asJSON  bool
		timeout time.Duration
		poll    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Send an export to a running server",
		Example: `  dfsprofile upload history.csv
  dfsprofile upload --async --server http://scoring:9080 history.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			body, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			client := NewClient(server, timeout, poll)
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if async {
				job, err := client.Submit(ctx, filepath.Base(path), body)
				if err != nil {
					return err
				}
				if asJSON {
					return writeIndented(out, job)
				}
				_, _ = fmt.Fprintf(out, "job %s %s", job.ID, job.State)
				if job.ProfileID != nil {
					_, _ = fmt.Fprintf(out, ", profile %s", job.ProfileID)
				}
				_, _ = fmt.Fprintln(out)
				return nil
			}

			a, err := client.Analyze(ctx, filepath.Base(path), body)
			if err != nil {
				return err
			}
			if asJSON {
				return writeIndented(out, a)
			}
			renderReport(out, path, &a)
			if a.ProfileID != nil {
				_, _ = fmt.Fprintf(out, "\nprofile %s\n", a.ProfileID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "http://localhost:9080", "base URL of the server")
	cmd.Flags().BoolVar(&async, "async", false, "queue the upload and wait for the job")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the JSON response")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "per request timeout")
	cmd.Flags().DurationVar(&poll, "poll", 250*time.Millisecond, "job status poll interval")
	return cmd
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
