package job

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Meta is the job metadata persisted alongside the job's artifacts so
// progress can be inspected while the pipeline runs.
type Meta struct {
	JobID     string  `json:"job_id"`
	Status    Status  `json:"status"`
	Progress  float64 `json:"progress"`
	Message   string  `json:"message"`
	CreatedAt string  `json:"created_at"`
}

// Store manages per-job working directories under a root directory. All job
// state lives on disk; the store itself is stateless.
type Store struct {
	Root string
}

// NewStore creates a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating jobs root: %w", err)
	}
	return &Store{Root: dir}, nil
}

// NewJobID generates a compact, sortable job identifier: a UTC timestamp plus
// a random suffix. If the system entropy source fails, the suffix falls back
// to the sub-second clock so an id is always produced.
func (st *Store) NewJobID() string {
	now := time.Now().UTC()
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		binary.BigEndian.PutUint32(suffix, uint32(now.Nanosecond()))
	}
	return now.Format("20060102-150405") + "-" + hex.EncodeToString(suffix)
}

// Dir returns (and ensures existence of) the working directory for a job.
func (st *Store) Dir(jobID string) (string, error) {
	dir := filepath.Join(st.Root, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating job dir: %w", err)
	}
	return dir, nil
}

// Create initializes metadata for a new queued job.
func (st *Store) Create(jobID string) error {
	return st.WriteMeta(&Meta{
		JobID:     jobID,
		Status:    StatusQueued,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadMeta loads a job's metadata from disk.
func (st *Store) ReadMeta(jobID string) (*Meta, error) {
	data, err := os.ReadFile(filepath.Join(st.Root, jobID, "meta.json"))
	if err != nil {
		return nil, fmt.Errorf("job %s not found: %w", jobID, err)
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing meta for job %s: %w", jobID, err)
	}
	return &meta, nil
}

// WriteMeta atomically persists job metadata (write to temp file, rename).
func (st *Store) WriteMeta(meta *Meta) error {
	dir, err := st.Dir(meta.JobID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	tmp := filepath.Join(dir, "meta.json.tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing meta: %w", err)
	}
	return os.Rename(tmp, filepath.Join(dir, "meta.json"))
}

// AppendLog appends a timestamped line to the job's log file.
func (st *Store) AppendLog(jobID, message string) error {
	dir, err := st.Dir(jobID)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(dir, "log.txt"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening job log: %w", err)
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "[%s] %s\n", time.Now().UTC().Format("15:04:05"), message)
	return err
}

// SetProgress updates progress (0.0–1.0) in metadata and logs the message.
func (st *Store) SetProgress(jobID string, progress float64, message string) error {
	meta, err := st.ReadMeta(jobID)
	if err != nil {
		return err
	}
	meta.Progress = progress
	meta.Message = message
	if err := st.WriteMeta(meta); err != nil {
		return err
	}
	if message != "" {
		return st.AppendLog(jobID, message)
	}
	return nil
}

// SetStatus updates job status in metadata and logs the transition.
func (st *Store) SetStatus(jobID string, status Status, message string) error {
	meta, err := st.ReadMeta(jobID)
	if err != nil {
		return err
	}
	meta.Status = status
	meta.Message = message
	if err := st.WriteMeta(meta); err != nil {
		return err
	}
	line := "STATUS -> " + string(status)
	if message != "" {
		line += ": " + message
	}
	return st.AppendLog(jobID, line)
}
