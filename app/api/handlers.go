package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"contentsync/app/cfg"
	"contentsync/app/database"
	"contentsync/app/push"
	"contentsync/app/ratelimit"
	"contentsync/app/sync"
	"contentsync/app/tasks"
)

const maxPushBodyBytes = 1 << 20

func NewHandler(sourceRepo database.SourceRepository, itemRepo database.ItemRepository,
	engine SyncEngineInterface, providers push.Registry, limiter ratelimit.Limiter,
	scheduler tasks.TaskSchedulerInterface, syncRateMax int, syncRateWindow time.Duration) *Handler {
	return &Handler{
		sourceRepo:     sourceRepo,
		itemRepo:       itemRepo,
		engine:         engine,
		providers:      providers,
		limiter:        limiter,
		scheduler:      scheduler,
		syncRateMax:    syncRateMax,
		syncRateWindow: syncRateWindow,
	}
}

// PullSync runs one interactive sync for the caller's source or an ad-hoc
// feed URL. Past the rate limit gate the response is always 200; sync
// failures travel in the body so clients keep a single success path.
func (h *Handler) PullSync(c *gin.Context) {
	var req PullSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.SourceID == "" && req.URL == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account_id and one of source_id or url are required"})
		return
	}

	if h.limiter.Limited(c.Request.Context(), "sync:"+req.AccountID, h.syncRateMax, h.syncRateWindow) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Sync rate limit exceeded, try again later"})
		return
	}

	source, errReport := h.resolvePullTarget(c, &req)
	if errReport != nil {
		c.JSON(http.StatusOK, *errReport)
		return
	}

	var outcome sync.Outcome
	if source != nil {
		outcome = h.engine.SyncSource(c.Request.Context(), source, false)
	} else {
		outcome = h.engine.SyncAdHoc(c.Request.Context(), req.AccountID, req.URL)
	}

	c.JSON(http.StatusOK, outcome.PullReport())
}

// resolvePullTarget maps a pull request onto a registered source, or nil
// for an ad-hoc URL import. A non-nil report means the lookup itself
// failed and should be returned as the response body.
func (h *Handler) resolvePullTarget(c *gin.Context, req *PullSyncRequest) (*database.ContentSource, *sync.PullReport) {
	if req.SourceID != "" {
		source, err := h.sourceRepo.GetSource(req.SourceID)
		if err != nil {
			slog.Error("Database error", "operation", "get_source", "source_id", req.SourceID, "error", err)
			return nil, &sync.PullReport{
				SourceID: req.SourceID,
				Articles: []sync.ArticleRef{},
				Errors:   []string{"failed to look up source"},
			}
		}
		if source == nil || source.AccountID != req.AccountID {
			return nil, &sync.PullReport{
				SourceID: req.SourceID,
				Articles: []sync.ArticleRef{},
				Errors:   []string{"source not found"},
			}
		}
		return source, nil
	}

	source, err := h.sourceRepo.GetSourceByURL(req.AccountID, req.URL)
	if err != nil {
		slog.Error("Database error", "operation", "get_source_by_url", "url", req.URL, "error", err)
		return nil, &sync.PullReport{
			SourceURL: req.URL,
			Articles:  []sync.ArticleRef{},
			Errors:    []string{"failed to look up source"},
		}
	}
	return source, nil
}

// BatchSync runs a full batch cycle over every eligible source and
// returns the aggregate summary.
func (h *Handler) BatchSync(c *gin.Context) {
	result, err := h.engine.SyncAll(c.Request.Context())
	if err != nil {
		slog.Error("Batch sync failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Batch sync failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// EnqueueSourceSync schedules a background sync for one source.
func (h *Handler) EnqueueSourceSync(c *gin.Context) {
	id := c.Param("id")

	source, err := h.sourceRepo.GetSource(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_source", "source_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if source == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source not found"})
		return
	}

	task := tasks.NewSyncSourceTask(source.ID, h.sourceRepo, h.engine)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing sync task", "source_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue sync task"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"enqueued": true,
		"task": gin.H{
			"id":   task.ID,
			"type": task.Type,
		},
	})
}

// PushIntake receives one provider delivery. Authentication failures are
// the only error responses; once the signature checks out the answer is
// 200, because push senders disable endpoints that keep failing.
func (h *Handler) PushIntake(c *gin.Context) {
	id := c.Param("id")

	source, err := h.sourceRepo.GetSource(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_source", "source_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if source == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source not found"})
		return
	}

	provider, ok := h.providers.Get(source.Kind)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source does not accept push deliveries"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPushBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	credential := provider.Credential(c.Request.Header, c.Request.URL.Query())
	if source.PushSecret == "" || !provider.Verify(body, credential, source.PushSecret) {
		slog.Warn("Push delivery rejected", "source_id", id, "kind", source.Kind)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		// The delivery itself still counts, even when the body is garbage.
		if terr := h.sourceRepo.TouchLastPush(source.ID); terr != nil {
			slog.Warn("Failed to record push delivery", "source_id", id, "error", terr)
		}
		slog.Debug("Unreadable push payload, acknowledged", "source_id", id, "error", err)
		c.JSON(http.StatusOK, PushResponse{Received: true, Stored: false, Reason: "unreadable payload"})
		return
	}

	outcome := h.engine.IngestPush(c.Request.Context(), source, payload)

	resp := PushResponse{
		Received: true,
		Stored:   outcome.ItemsImported+outcome.ItemsUpdated > 0,
		Updated:  outcome.ItemsUpdated > 0,
	}
	if len(outcome.Articles) > 0 {
		resp.ItemURL = outcome.Articles[0].URL
	}
	if !resp.Stored && len(outcome.Errors) > 0 {
		resp.Reason = outcome.Errors[0]
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if sourceCount, err := h.sourceRepo.GetSourceCount(); err == nil {
		health["sources"] = sourceCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"version": cfg.GetVersion(),
	}

	if sourceCount, err := h.sourceRepo.GetSourceCount(); err == nil {
		stats["sources"] = sourceCount
	}
	if itemCount, err := h.itemRepo.GetItemCount(); err == nil {
		stats["items"] = itemCount
	}

	c.JSON(http.StatusOK, stats)
}
