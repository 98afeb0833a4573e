// Package upload validates a chosen photo and sends it to the API with its
// custom labels.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gabriel-vasile/mimetype"

	"github.com/five82/shutter/internal/logging"
	"github.com/five82/shutter/internal/notify"
	"github.com/five82/shutter/internal/photoapi"
)

const (
	defaultContentType = "image/jpeg"
	labelsPlaceholder  = "e.g., sunset, beach, vacation"
	labelsCharLimit    = 512
)

// Candidate is a file accepted for upload. Its bytes are read when the
// upload starts, not when it is selected.
type Candidate struct {
	Path     string
	FileName string
	MIMEType string
	Size     int64
}

// Model owns the selected candidate, the labels input, and the busy flag.
type Model struct {
	ctx    context.Context
	client photoapi.Uploader
	logger *slog.Logger

	candidate *Candidate
	labels    textinput.Model
	busy      bool
}

type doneMsg struct {
	fileName string
	size     int
	err      error
}

// New creates an idle upload model. A nil ctx uses context.Background.
func New(ctx context.Context, client photoapi.Uploader, logger *slog.Logger) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	ti := textinput.New()
	ti.Placeholder = labelsPlaceholder
	ti.CharLimit = labelsCharLimit
	ti.Prompt = "# "
	return Model{
		ctx:    ctx,
		client: client,
		logger: logger.With("component", "upload"),
		labels: ti,
	}
}

// Busy reports whether an upload is in flight.
func (m Model) Busy() bool { return m.busy }

// Candidate returns the file currently selected for upload.
func (m Model) Candidate() (Candidate, bool) {
	if m.candidate == nil {
		return Candidate{}, false
	}
	return *m.candidate, true
}

// Labels returns the raw labels text.
func (m Model) Labels() string { return m.labels.Value() }

// SetLabels replaces the labels text.
func (m *Model) SetLabels(s string) { m.labels.SetValue(s) }

// Focus gives the labels input the cursor.
func (m *Model) Focus() tea.Cmd { return m.labels.Focus() }

// Blur removes the cursor from the labels input.
func (m *Model) Blur() { m.labels.Blur() }

// LabelsView renders the labels input.
func (m Model) LabelsView() string { return m.labels.View() }

// Select makes path the upload candidate when it is an image. accepted is
// false when the file was rejected; the caller should then reset its file
// input. Selection is ignored while an upload is in flight.
func (m Model) Select(path string) (_ Model, accepted bool, _ tea.Cmd) {
	if m.busy {
		return m, false, nil
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		m.candidate = nil
		m.logger.Warn("file selection rejected", "path", path, "error", err)
		return m, false, notify.Error("Please select an image file")
	}

	mimeType := DetectMIME(path)
	if !strings.HasPrefix(mimeType, "image/") {
		m.candidate = nil
		m.logger.Info("non-image file rejected", "path", path, "mime", mimeType)
		return m, false, notify.Error("Please select an image file")
	}

	m.candidate = &Candidate{
		Path:     path,
		FileName: filepath.Base(path),
		MIMEType: mimeType,
		Size:     info.Size(),
	}
	m.logger.Info("file selected", "file", m.candidate.FileName, "mime", mimeType, "size", info.Size())
	return m, true, nil
}

// Submit starts the upload of the current candidate. It is a no-op while an
// upload is already in flight.
func (m Model) Submit() (Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	if m.candidate == nil {
		return m, notify.Error("Please select a file to upload")
	}

	labels := ParseLabels(m.labels.Value())
	m.busy = true
	m.logger.Info("upload started", "file", m.candidate.FileName, "labels", len(labels))
	return m, m.uploadCmd(*m.candidate, labels)
}

// Update handles upload results and, while idle, edits to the labels input.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		return m.handleDone(msg)
	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
	}
	// Keys and cursor blinks go to the input.
	var cmd tea.Cmd
	m.labels, cmd = m.labels.Update(msg)
	return m, cmd
}

func (m Model) handleDone(msg doneMsg) (Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		m.logger.Warn("upload failed", "file", msg.fileName, "error", msg.err)
		return m, notify.Error("Upload failed: " + photoapi.Explain(msg.err))
	}
	m.logger.Info("upload finished", "file", msg.fileName, "bytes", msg.size)
	m.candidate = nil
	m.labels.SetValue("")
	return m, notify.Success("Photo uploaded successfully!")
}

func (m Model) uploadCmd(c Candidate, labels []string) tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = doneMsg{fileName: c.FileName, err: fmt.Errorf("upload panicked: %v", r)}
			}
		}()
		if client == nil {
			return doneMsg{fileName: c.FileName, err: errors.New("upload client unavailable")}
		}
		body, err := os.ReadFile(c.Path)
		if err != nil {
			return doneMsg{fileName: c.FileName, err: fmt.Errorf("read file: %w", err)}
		}
		contentType := c.MIMEType
		if contentType == "" {
			contentType = defaultContentType
		}
		err = client.Upload(ctx, photoapi.UploadRequest{
			FileName:    c.FileName,
			ContentType: contentType,
			Body:        body,
			Labels:      labels,
		})
		return doneMsg{fileName: c.FileName, size: len(body), err: err}
	}
}

// ParseLabels splits raw on commas, trims each piece, and drops empty ones.
// Order and duplicates are preserved.
func ParseLabels(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if label := strings.TrimSpace(part); label != "" {
			out = append(out, label)
		}
	}
	return out
}

// DetectMIME returns the media type of the file at path, without
// parameters. The extension is consulted first; content sniffing is the
// fallback. It returns "" when neither yields a type.
func DetectMIME(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return stripParams(t)
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil || mt == nil {
		return ""
	}
	return stripParams(mt.String())
}

func stripParams(t string) string {
	base, _, _ := strings.Cut(t, ";")
	return strings.ToLower(strings.TrimSpace(base))
}
