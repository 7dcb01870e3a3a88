package engine

import (
	"context"
	"sync"

	"scriptsync/buffer"
	"scriptsync/logger"
	"scriptsync/remote"
	"scriptsync/review"
	"scriptsync/workspace"

	"github.com/neovim/go-client/nvim"
)

type Config struct {
	NsID int
}

// Buffer is the editor surface the engine drives. *buffer.NvimBuffer is the
// production implementation; tests substitute a fake.
type Buffer interface {
	review.Document
	review.Surface

	SetClient(n *nvim.Nvim)
	Sync() (*buffer.SyncResult, error)
	Cwd() string
	Lines() []string
	NotifyError(msg string) error
	RegisterEventHandler(handler func(event string, args []any)) error
}

// Remote is the platform file API the engine pulls from and pushes to.
type Remote interface {
	FetchFile(ctx context.Context, remotePath string) (string, error)
	PushFile(ctx context.Context, remotePath, content string) error
	ListFiles(ctx context.Context, prefix string) ([]string, error)
}

// Engine owns the review state for the process and serializes all operations
// through a single event loop: diffing, store mutation, buffer edits, and
// repaints all happen on that one goroutine, so interleaving of asynchronous
// steps — not parallel execution — is the only concurrency concern.
type Engine struct {
	config Config

	buf      Buffer
	store    *review.Store
	renderer *review.Renderer
	resolver *review.Resolver

	// Current workspace and its remote client, resolved lazily from the
	// editor's working directory.
	ws *workspace.Workspace
	rc Remote

	// newRemote builds the platform client for a workspace's settings.
	// Swapped in tests.
	newRemote func(*workspace.Settings) Remote

	eventChan chan Event

	mu         sync.Mutex
	mainCtx    context.Context
	mainCancel context.CancelFunc
	stopped    bool
	stopOnce   sync.Once
}

func NewEngine(config Config) *Engine {
	buf := buffer.New(buffer.Config{NsID: config.NsID})
	return newEngine(config, buf, func(s *workspace.Settings) Remote {
		return remote.NewClient(remote.Config{
			BaseURL:   s.URL,
			Token:     s.Token,
			TimeoutMs: s.TimeoutMs,
		})
	})
}

func newEngine(config Config, buf Buffer, newRemote func(*workspace.Settings) Remote) *Engine {
	store := review.NewStore()
	renderer := review.NewRenderer(store, buf)
	return &Engine{
		config:    config,
		buf:       buf,
		store:     store,
		renderer:  renderer,
		resolver:  review.NewResolver(store, renderer, buf),
		newRemote: newRemote,
		eventChan: make(chan Event, 100),
	}
}

// SetNvim wires a freshly connected editor to the engine. Each new
// connection replaces the previous client; review state in the store
// survives reconnects.
func (e *Engine) SetNvim(n *nvim.Nvim) {
	e.buf.SetClient(n)
	if err := e.buf.RegisterEventHandler(func(event string, args []any) {
		e.Dispatch(event, args)
	}); err != nil {
		logger.Error("error registering event handler: %v", err)
	}
}

func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.mainCtx, e.mainCancel = context.WithCancel(ctx)
	e.mu.Unlock()

	go e.eventLoop(e.mainCtx)
	logger.Info("engine started")
}

// Stop shuts down the event loop. Pending review state is discarded with the
// process; a restart means the user re-pulls to resume review.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		logger.Info("stopping engine...")
		e.stopped = true
		if e.mainCancel != nil {
			e.mainCancel()
		}
	})
}

// Dispatch queues an event for the loop. Unknown event names are dropped
// with a warning; a full queue drops the event rather than blocking the RPC
// handler.
func (e *Engine) Dispatch(event string, args []any) {
	typ := EventTypeFromString(event)
	if typ == "" {
		logger.Warn("unknown event: %q", event)
		return
	}
	select {
	case e.eventChan <- Event{Type: typ, Args: args}:
	default:
		logger.Warn("event queue full, dropping %s", event)
	}
}

// workspaceFor resolves the workspace (and its remote client) for the
// editor's current working directory, reusing the cached one when the root
// is unchanged.
func (e *Engine) workspaceFor(root string) (*workspace.Workspace, Remote, error) {
	if e.ws != nil && e.ws.Root == root {
		return e.ws, e.rc, nil
	}
	ws, err := workspace.Open(root)
	if err != nil {
		return nil, nil, err
	}
	e.ws = ws
	e.rc = e.newRemote(ws.Settings)
	logger.Info("workspace opened: %s -> %s", ws.Root, ws.Settings.URL)
	return e.ws, e.rc, nil
}
