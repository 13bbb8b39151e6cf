// Package opencode reads OpenCode message files from
// $OPENCODE_DATA_DIR/storage (or the XDG data dir).
package opencode

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/franzos/tku/internal/core"
	"github.com/franzos/tku/internal/providers/shared"
	"github.com/franzos/tku/internal/storage"
)

type Provider struct{}

func New() *Provider { return &Provider{} }

func (p *Provider) Name() string { return "opencode" }

func (p *Provider) Roots() []string {
	return shared.Roots("OPENCODE_DATA_DIR", []string{"storage"}, []shared.HomeFallback{
		{Base: shared.BaseData, Subpaths: []string{"opencode", "storage"}},
	})
}

func (p *Provider) DiscoverAndParse(store storage.Store, progress shared.ProgressFunc) {
	roots := p.Roots()

	// Session metadata is loaded up front so each message file can
	// resolve its project without another disk walk.
	projects := loadSessionProjects(roots)

	messageRoots := make([]string, 0, len(roots))
	for _, root := range roots {
		messageRoots = append(messageRoots, filepath.Join(root, "message"))
	}
	files := shared.DiscoverFiles(messageRoots, "json")

	shared.Run(p.Name(), files, store, progress, func(path string) []core.UsageRecord {
		return parseMessage(path, projects)
	})
}

type sessionMeta struct {
	ID        string `json:"id"`
	Directory string `json:"directory"`
	ProjectID string `json:"projectID"`
}

func loadSessionProjects(roots []string) map[string]string {
	projects := make(map[string]string)
	for _, root := range roots {
		sessionDir := filepath.Join(root, "session")
		for _, f := range shared.DiscoverFiles([]string{sessionDir}, "json") {
			content, err := os.ReadFile(f.Path)
			if err != nil {
				continue
			}
			var meta sessionMeta
			if err := json.Unmarshal(content, &meta); err != nil || meta.ID == "" {
				continue
			}
			projects[meta.ID] = projectName(&meta)
		}
	}
	return projects
}

func projectName(meta *sessionMeta) string {
	if meta.Directory != "" {
		if base := meta.Directory[strings.LastIndex(meta.Directory, "/")+1:]; base != "" {
			return base
		}
	}
	if meta.ProjectID != "" {
		return meta.ProjectID
	}
	return "opencode"
}

type messageFile struct {
	ID         string     `json:"id"`
	ProviderID string     `json:"providerID"`
	ModelID    string     `json:"modelID"`
	SessionID  string     `json:"sessionID"`
	Time       *timeInfo  `json:"time"`
	Tokens     *tokenInfo `json:"tokens"`
}

type timeInfo struct {
	Created int64 `json:"created"`
}

type tokenInfo struct {
	Input  uint64     `json:"input"`
	Output uint64     `json:"output"`
	Cache  *cacheInfo `json:"cache"`
}

type cacheInfo struct {
	Read  uint64 `json:"read"`
	Write uint64 `json:"write"`
}

func parseMessage(path string, projects map[string]string) []core.UsageRecord {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var msg messageFile
	if err := json.Unmarshal(content, &msg); err != nil {
		return nil
	}

	if msg.ID == "" || msg.ProviderID == "" || msg.ModelID == "" ||
		msg.Time == nil || msg.Tokens == nil {
		return nil
	}
	if msg.Tokens.Input == 0 && msg.Tokens.Output == 0 {
		return nil
	}

	sessionID := msg.SessionID
	if sessionID == "" {
		sessionID = "unknown"
	}
	project, ok := projects[sessionID]
	if !ok {
		project = "opencode"
	}

	var cacheRead, cacheWrite uint64
	if msg.Tokens.Cache != nil {
		cacheRead = msg.Tokens.Cache.Read
		cacheWrite = msg.Tokens.Cache.Write
	}

	return []core.UsageRecord{{
		Provider:                 "opencode",
		SessionID:                sessionID,
		Timestamp:                shared.UnixMillis(msg.Time.Created),
		Project:                  project,
		Model:                    msg.ModelID,
		MessageID:                msg.ID,
		InputTokens:              msg.Tokens.Input,
		OutputTokens:             msg.Tokens.Output,
		CacheCreationInputTokens: cacheWrite,
		CacheReadInputTokens:     cacheRead,
	}}
}
