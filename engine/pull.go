package engine

import (
	"context"
	"fmt"

	"scriptsync/logger"
	"scriptsync/review"
	"scriptsync/text"
)

// handlePull fetches the remote counterpart of the focused file and opens a
// review session over the divergence. The buffer's live content — not the
// on-disk copy — is the local side, so unsaved edits are diffed too.
func (e *Engine) handlePull(ctx context.Context) {
	if _, err := e.buf.Sync(); err != nil {
		logger.Error("pull: sync failed: %v", err)
		return
	}

	ws, rc, err := e.workspaceFor(e.buf.Cwd())
	if err != nil {
		e.buf.NotifyError(fmt.Sprintf("scriptsync: %v", err))
		return
	}

	rel, ok := ws.Rel(e.buf.Key())
	if !ok || !ws.Included(rel) {
		e.buf.Notify(fmt.Sprintf("scriptsync: %s is not under sync", e.buf.Key()))
		return
	}

	remoteText, err := rc.FetchFile(ctx, ws.RemotePath(rel))
	if err != nil {
		e.buf.NotifyError(fmt.Sprintf("scriptsync: pull failed: %v", err))
		return
	}

	localText := text.Normalize(text.JoinLines(e.buf.Lines()))
	e.openReview(localText, remoteText)
}

// openReview diffs the focused document against remote text, builds the
// pending-change list off-store, and swaps it in as one atomic update. A new
// pull for the same document wholly replaces any in-progress review.
func (e *Engine) openReview(localText, remoteText string) {
	docKey := e.buf.Key()

	segs := text.Diff(localText, remoteText)
	changes := review.BuildChanges(segs)

	if len(changes) == 0 {
		// No divergence: no store entry is created, and a superseded prior
		// session for this document is dropped.
		if e.store.Get(docKey) != nil {
			e.store.Remove(docKey)
			if err := e.buf.Clear(docKey); err != nil {
				logger.Error("clear %s: %v", docKey, err)
			}
		}
		e.buf.Notify(fmt.Sprintf("scriptsync: %s is up to date", docKey))
		return
	}

	e.store.Put(docKey, changes)
	if err := e.renderer.Render(e.buf); err != nil {
		e.buf.NotifyError(fmt.Sprintf("scriptsync: render failed: %v", err))
		return
	}
	e.buf.Notify(fmt.Sprintf("scriptsync: %d pending change(s) in %s", len(changes), docKey))
}

// handlePullAll sweeps every synced workspace file: files missing locally
// are created from remote content, the focused file gets a review session,
// and other divergent files are only counted — inline review needs the file
// in a buffer.
func (e *Engine) handlePullAll(ctx context.Context) {
	if _, err := e.buf.Sync(); err != nil {
		logger.Error("pull_all: sync failed: %v", err)
		return
	}

	ws, rc, err := e.workspaceFor(e.buf.Cwd())
	if err != nil {
		e.buf.NotifyError(fmt.Sprintf("scriptsync: %v", err))
		return
	}

	focusedRel, focusedOk := ws.Rel(e.buf.Key())

	remotePaths, err := rc.ListFiles(ctx, ws.Settings.RemoteRoot)
	if err != nil {
		e.buf.NotifyError(fmt.Sprintf("scriptsync: list failed: %v", err))
		return
	}

	var created, divergent, failed int
	for _, remotePath := range remotePaths {
		localAbs, ok := ws.LocalPath(remotePath)
		if !ok {
			continue
		}
		rel, ok := ws.Rel(localAbs)
		if !ok || !ws.Included(rel) {
			continue
		}

		remoteText, err := rc.FetchFile(ctx, remotePath)
		if err != nil {
			logger.Warn("pull_all: fetch %s: %v", remotePath, err)
			failed++
			continue
		}

		if focusedOk && rel == focusedRel {
			localText := text.Normalize(text.JoinLines(e.buf.Lines()))
			if localText != remoteText {
				divergent++
			}
			e.openReview(localText, remoteText)
			continue
		}

		localText, exists, err := ws.ReadFile(rel)
		if err != nil {
			logger.Warn("pull_all: read %s: %v", rel, err)
			failed++
			continue
		}
		if !exists {
			if err := ws.WriteFile(rel, remoteText); err != nil {
				logger.Warn("pull_all: create %s: %v", rel, err)
				failed++
				continue
			}
			created++
			continue
		}
		if text.Normalize(localText) != remoteText {
			divergent++
		}
	}

	msg := fmt.Sprintf("scriptsync: pull complete, %d created, %d divergent", created, divergent)
	if failed > 0 {
		msg += fmt.Sprintf(", %d failed", failed)
	}
	e.buf.Notify(msg)
}

// handlePush uploads the focused buffer's content to its remote counterpart.
func (e *Engine) handlePush(ctx context.Context) {
	if _, err := e.buf.Sync(); err != nil {
		logger.Error("push: sync failed: %v", err)
		return
	}

	ws, rc, err := e.workspaceFor(e.buf.Cwd())
	if err != nil {
		e.buf.NotifyError(fmt.Sprintf("scriptsync: %v", err))
		return
	}

	rel, ok := ws.Rel(e.buf.Key())
	if !ok || !ws.Included(rel) {
		e.buf.Notify(fmt.Sprintf("scriptsync: %s is not under sync", e.buf.Key()))
		return
	}

	content := text.Normalize(text.JoinLines(e.buf.Lines()))
	if err := rc.PushFile(ctx, ws.RemotePath(rel), content); err != nil {
		e.buf.NotifyError(fmt.Sprintf("scriptsync: push failed: %v", err))
		return
	}
	e.buf.Notify(fmt.Sprintf("scriptsync: pushed %s", rel))
}

// handlePushAll uploads every synced workspace file from disk. The focused
// buffer is not special-cased: an unsaved buffer edit is not on disk yet and
// a sweep pushes what the workspace holds.
func (e *Engine) handlePushAll(ctx context.Context) {
	if _, err := e.buf.Sync(); err != nil {
		logger.Error("push_all: sync failed: %v", err)
		return
	}

	ws, rc, err := e.workspaceFor(e.buf.Cwd())
	if err != nil {
		e.buf.NotifyError(fmt.Sprintf("scriptsync: %v", err))
		return
	}

	files, err := ws.Files()
	if err != nil {
		e.buf.NotifyError(fmt.Sprintf("scriptsync: workspace walk failed: %v", err))
		return
	}

	var pushed, failed int
	for _, rel := range files {
		content, exists, err := ws.ReadFile(rel)
		if err != nil || !exists {
			logger.Warn("push_all: read %s: %v", rel, err)
			failed++
			continue
		}
		if err := rc.PushFile(ctx, ws.RemotePath(rel), text.Normalize(content)); err != nil {
			logger.Warn("push_all: push %s: %v", rel, err)
			failed++
			continue
		}
		pushed++
	}

	msg := fmt.Sprintf("scriptsync: pushed %d file(s)", pushed)
	if failed > 0 {
		msg += fmt.Sprintf(", %d failed", failed)
	}
	e.buf.Notify(msg)
}

// handleResolve accepts or rejects a single pending change identified by
// (docKey, id). A key or id that no longer matches the store is an expected
// race with a superseding pull and resolves to a silent no-op.
func (e *Engine) handleResolve(args []any, accept bool) {
	docKey, ok := argString(args, 0)
	if !ok {
		logger.Warn("resolve: missing document key")
		return
	}
	id, ok := argInt64(args, 1)
	if !ok {
		logger.Warn("resolve: missing change id")
		return
	}

	if _, err := e.buf.Sync(); err != nil {
		logger.Error("resolve: sync failed: %v", err)
		return
	}
	if e.buf.Key() != docKey {
		// The action targets a document that is no longer focused; its
		// annotations are stale.
		logger.Debug("resolve: %s not focused, ignoring change %d", docKey, id)
		return
	}

	var err error
	if accept {
		err = e.resolver.Accept(e.buf, id)
	} else {
		err = e.resolver.Reject(e.buf, id)
	}
	if err != nil {
		e.buf.NotifyError(fmt.Sprintf("scriptsync: %v", err))
	}
}

// handleResolveAll resolves every pending change in the focused document,
// one at a time in list order. There is no transactional batching; each
// resolution re-anchors the rest exactly as a manual sequence would.
func (e *Engine) handleResolveAll(accept bool) {
	if _, err := e.buf.Sync(); err != nil {
		logger.Error("resolve_all: sync failed: %v", err)
		return
	}

	list := e.store.Get(e.buf.Key())
	ids := make([]int64, len(list))
	for i, c := range list {
		ids[i] = c.ID
	}

	for _, id := range ids {
		var err error
		if accept {
			err = e.resolver.Accept(e.buf, id)
		} else {
			err = e.resolver.Reject(e.buf, id)
		}
		if err != nil {
			e.buf.NotifyError(fmt.Sprintf("scriptsync: %v", err))
			return
		}
	}
}

// handleFocus lazily repaints annotations when a document regains the
// viewport. Documents with no pending changes are left untouched.
func (e *Engine) handleFocus() {
	if _, err := e.buf.Sync(); err != nil {
		logger.Error("focus: sync failed: %v", err)
		return
	}
	if e.store.Get(e.buf.Key()) == nil {
		return
	}
	if err := e.renderer.Render(e.buf); err != nil {
		logger.Error("focus: render failed: %v", err)
	}
}

// handleEsc hides the annotations without resolving anything. The store
// keeps the list, so regaining focus repaints it.
func (e *Engine) handleEsc() {
	if _, err := e.buf.Sync(); err != nil {
		logger.Error("esc: sync failed: %v", err)
		return
	}
	if err := e.buf.Clear(e.buf.Key()); err != nil {
		logger.Error("esc: clear failed: %v", err)
	}
}
