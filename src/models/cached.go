package models

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Protocol-Lattice/go-assistant/src/cache"
)

// CachedLLM wraps an Agent and memoizes text-only completions. Requests whose
// answer contained tool calls are never cached: call IDs must stay unique per
// turn. Optional file persistence survives restarts.
type CachedLLM struct {
	Agent    Agent
	Cache    *cache.LRUCache
	FilePath string
}

// NewCachedLLM creates a caching wrapper around agent.
func NewCachedLLM(agent Agent, size int, ttl time.Duration, filePath string) *CachedLLM {
	c := &CachedLLM{
		Agent:    agent,
		Cache:    cache.NewLRUCache(size, ttl),
		FilePath: filePath,
	}
	if filePath != "" {
		c.load()
	}
	return c
}

func (c *CachedLLM) Invoke(ctx context.Context, req Request) (*Completion, error) {
	key := cacheKey(req)
	if val, ok := c.Cache.Get(key); ok {
		if text, ok := val.(string); ok {
			return &Completion{Text: text}, nil
		}
	}

	out, err := c.Agent.Invoke(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(out.ToolCalls) == 0 && out.Text != "" {
		c.Cache.Set(key, out.Text)
		c.save()
	}
	return out, nil
}

// cacheKey hashes everything that shapes the answer: system prompt,
// transcript and the advertised tool set.
func cacheKey(req Request) string {
	h := sha256.New()
	h.Write([]byte(req.System))
	for _, m := range req.Messages {
		fmt.Fprintf(h, "%s\x00%s\x00%s\x00", m.Role, m.Content, m.ToolCallID)
	}
	for _, t := range req.Tools {
		fmt.Fprintf(h, "%s\x00%s\x00", t.Name, t.Description)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *CachedLLM) load() {
	f, err := os.Open(c.FilePath)
	if err != nil {
		return
	}
	defer f.Close()

	var dump map[string]cache.CacheEntry
	if err := json.NewDecoder(f).Decode(&dump); err == nil {
		c.Cache.Restore(dump)
	}
}

func (c *CachedLLM) save() {
	if c.FilePath == "" {
		return
	}
	dump := c.Cache.Dump()

	tmp := c.FilePath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return
	}
	if err := json.NewEncoder(f).Encode(dump); err != nil {
		f.Close()
		os.Remove(tmp)
		return
	}
	f.Close()
	os.Rename(tmp, c.FilePath)
}

// TryCreateCachedLLM checks env vars and wraps the agent when caching is
// enabled via ASSISTANT_LLM_CACHE_SIZE.
func TryCreateCachedLLM(agent Agent) Agent {
	sizeStr := os.Getenv("ASSISTANT_LLM_CACHE_SIZE")
	if sizeStr == "" {
		return agent
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size <= 0 {
		return agent
	}

	ttl := 300 * time.Second
	if ttlStr := os.Getenv("ASSISTANT_LLM_CACHE_TTL"); ttlStr != "" {
		if sec, err := strconv.Atoi(ttlStr); err == nil && sec > 0 {
			ttl = time.Duration(sec) * time.Second
		}
	}

	path := os.Getenv("ASSISTANT_LLM_CACHE_PATH")
	if path == "" {
		path = ".assistant_cache.json"
	}
	return NewCachedLLM(agent, size, ttl, path)
}
