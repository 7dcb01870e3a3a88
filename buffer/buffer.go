package buffer

import (
	"fmt"
	"path/filepath"

	"scriptsync/logger"
	"scriptsync/review"

	"github.com/neovim/go-client/nvim"
)

type Config struct {
	NsID int
}

// NvimBuffer tracks the currently focused Neovim buffer and exposes it to
// the review core as a Document (line access, atomic edits) and a Surface
// (annotation paints, notifications). State is a snapshot; Sync refreshes it
// from the editor in one batched round-trip.
type NvimBuffer struct {
	client *nvim.Nvim // stored internally, set via SetClient

	id    nvim.Buffer
	lines []string
	path  string
	cwd   string

	config Config
}

// SyncResult reports whether the focused buffer changed since the last sync.
type SyncResult struct {
	BufferChanged bool
	OldPath       string
	NewPath       string
}

func New(config Config) *NvimBuffer {
	return &NvimBuffer{
		lines:  []string{},
		config: config,
	}
}

// SetClient stores the nvim client for all buffer operations
func (b *NvimBuffer) SetClient(n *nvim.Nvim) {
	b.client = n
}

// Sync reads the focused buffer's identity, content, and working directory
// from the editor using the batch API so everything arrives in a single
// round-trip.
func (b *NvimBuffer) Sync() (*SyncResult, error) {
	defer logger.Span("buffer.Sync")()
	if b.client == nil {
		return nil, fmt.Errorf("nvim client not set")
	}

	batch := b.client.NewBatch()

	var currentBuf nvim.Buffer
	var path string
	var lines [][]byte
	var nvimCwd string

	batch.CurrentBuffer(&currentBuf)
	batch.BufferName(nvim.Buffer(0), &path)
	batch.BufferLines(nvim.Buffer(0), 0, -1, false, &lines)
	batch.ExecLua(`return vim.fn.getcwd()`, &nvimCwd, nil)

	if err := batch.Execute(); err != nil {
		logger.Error("error executing sync batch: %v", err)
		return nil, err
	}

	linesStr := make([]string, len(lines))
	for i, line := range lines {
		linesStr[i] = string(line)
	}

	oldPath := b.path
	changed := b.id != currentBuf

	b.id = currentBuf
	b.lines = linesStr
	b.cwd = nvimCwd
	b.path = filepath.Clean(path)

	return &SyncResult{
		BufferChanged: changed,
		OldPath:       oldPath,
		NewPath:       b.path,
	}, nil
}

// Cwd returns Neovim's working directory as of the last sync.
func (b *NvimBuffer) Cwd() string { return b.cwd }

// Lines returns the buffer content snapshot as of the last sync.
func (b *NvimBuffer) Lines() []string { return b.lines }

// review.Document implementation

// Key is the canonical document identity: the buffer's full path.
func (b *NvimBuffer) Key() string { return b.path }

func (b *NvimBuffer) LineCount() int { return len(b.lines) }

func (b *NvimBuffer) Line(i int) string {
	if i < 0 || i >= len(b.lines) {
		return ""
	}
	return b.lines[i]
}

// ApplyEdit replaces the half-open line range [startLine, endLine) with the
// given lines. A single SetBufferLines call keeps the edit atomic, so the
// editor's undo stack records it as one action. The local snapshot is
// spliced to match on success.
func (b *NvimBuffer) ApplyEdit(startLine, endLine int, lines []string) error {
	if b.client == nil {
		return fmt.Errorf("nvim client not set")
	}
	if startLine < 0 || endLine < startLine || endLine > len(b.lines) {
		return fmt.Errorf("edit range [%d, %d) out of bounds for %d lines", startLine, endLine, len(b.lines))
	}

	byteLines := make([][]byte, len(lines))
	for i, line := range lines {
		byteLines[i] = []byte(line)
	}

	if err := b.client.SetBufferLines(b.id, startLine, endLine, false, byteLines); err != nil {
		return err
	}

	next := make([]string, 0, len(b.lines)-(endLine-startLine)+len(lines))
	next = append(next, b.lines[:startLine]...)
	next = append(next, lines...)
	next = append(next, b.lines[endLine:]...)
	b.lines = next
	return nil
}

// review.Surface implementation

// Paint hands the full annotation set for a document to the Lua layer, which
// replaces everything previously rendered in the plugin's namespace.
func (b *NvimBuffer) Paint(p *review.Painting) error {
	if b.client == nil {
		return fmt.Errorf("nvim client not set")
	}
	payload := paintingToLua(p, b.config.NsID)
	logger.Debug("sending to lua on_review_ready: doc=%s added=%d removed=%d changed=%d",
		p.DocKey, len(p.Added), len(p.Removed), len(p.Changed))
	return b.execLua("require('scriptsync').on_review_ready(...)", payload)
}

// Clear removes all painted annotations for the document. Clearing a
// document that is not currently displayed is a no-op on the Lua side.
func (b *NvimBuffer) Clear(docKey string) error {
	if b.client == nil {
		return fmt.Errorf("nvim client not set")
	}
	logger.Debug("sending to lua on_review_clear: doc=%s", docKey)
	return b.execLua("require('scriptsync').on_review_clear(...)", map[string]any{
		"doc":   docKey,
		"ns_id": b.config.NsID,
	})
}

// Notify surfaces an informational message through vim.notify.
func (b *NvimBuffer) Notify(msg string) error {
	if b.client == nil {
		return fmt.Errorf("nvim client not set")
	}
	return b.execLua("vim.notify(...)", msg)
}

// NotifyError surfaces a failed operation through vim.notify at error level.
func (b *NvimBuffer) NotifyError(msg string) error {
	if b.client == nil {
		return fmt.Errorf("nvim client not set")
	}
	batch := b.client.NewBatch()
	batch.ExecLua("vim.notify(..., vim.log.levels.ERROR)", nil, msg)
	return batch.Execute()
}

// RegisterEventHandler registers the handler invoked by the Lua layer for
// user actions (pull, accept, reject, focus, ...). Arguments after the event
// name are event-specific.
func (b *NvimBuffer) RegisterEventHandler(handler func(event string, args []any)) error {
	if b.client == nil {
		return fmt.Errorf("nvim client not set")
	}
	return b.client.RegisterHandler("scriptsync_event", func(_ *nvim.Nvim, event string, args ...any) {
		handler(event, args)
	})
}

func (b *NvimBuffer) execLua(luaCode string, args ...any) error {
	batch := b.client.NewBatch()
	if len(args) > 0 {
		batch.ExecLua(luaCode, nil, args...)
	} else {
		batch.ExecLua(luaCode, nil, nil)
	}
	if err := batch.Execute(); err != nil {
		logger.Error("error executing lua function: %v", err)
		return err
	}
	return nil
}

// paintingToLua converts a Painting to the map shape the Lua layer renders
// from. Display line numbers stay 0-indexed; Lua passes them straight to
// nvim_buf_set_extmark. Remote text is carried verbatim, internal newlines
// included, so the hover detail can preserve whitespace exactly.
func paintingToLua(p *review.Painting, nsID int) map[string]any {
	group := func(annotations []review.Annotation) []map[string]any {
		out := make([]map[string]any, 0, len(annotations))
		for _, a := range annotations {
			out = append(out, map[string]any{
				"id":          a.ID,
				"start_line":  a.StartLine,
				"start_col":   a.StartCol,
				"end_line":    a.EndLine,
				"end_col":     a.EndCol,
				"remote_text": a.RemoteText,
			})
		}
		return out
	}

	return map[string]any{
		"doc":     p.DocKey,
		"ns_id":   nsID,
		"added":   group(p.Added),
		"removed": group(p.Removed),
		"changed": group(p.Changed),
	}
}
