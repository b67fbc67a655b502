// Package controller owns the conversation state of the client: the message
// log, the connectivity flag, the assistant's activity state and the current
// suggestions. It drives the remote service and turns every failure into a
// message in the log.
package controller

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/raphaelgruber/omnimind/internal/client"
	"github.com/raphaelgruber/omnimind/internal/models"
	"github.com/raphaelgruber/omnimind/internal/schedule"
)

// Fixed texts shown in the conversation log.
const (
	WelcomeText         = "OmniMind OS initialized. All systems operational."
	UnreachableText     = "Backend connection failed. Please start the API server with: python api_server.py"
	ChatFailureText     = "Connection error. Please ensure the API server is running on port 8000."
	SkillFailureText    = "Failed to execute skill. Please check connection."
	SkillErrorPrefix    = "Error: "
	skillErrorFallback  = "Failed to execute skill"
	perSentenceDuration = 2000 * time.Millisecond
)

// Service is the part of the remote service client the controller uses.
type Service interface {
	GetStatus(ctx context.Context) client.Status
	SendMessage(ctx context.Context, message string) (*client.ChatResponse, error)
	ExecuteSkill(ctx context.Context, skillID, query string) (*client.SkillResult, error)
}

// Compile-time check that the HTTP client satisfies Service.
var _ Service = (*client.Client)(nil)

// ConnectivityPolicy decides how skill executions affect the connectivity flag.
type ConnectivityPolicy int

const (
	// ConnectivityUniform treats skill calls like chat sends: a transport
	// failure clears the flag and a completed call sets it.
	ConnectivityUniform ConnectivityPolicy = iota
	// ConnectivityObserved leaves the flag untouched on skill calls.
	ConnectivityObserved
)

// State is a point-in-time copy of the controller state.
type State struct {
	Messages    []models.Message
	Connected   bool
	Activity    models.ActivityState
	Suggestions []string
	Sending     bool
	Context     *client.ConversationContext
	Status      client.Status
}

// Observer is notified with a fresh snapshot after every state change.
// It may be called from timer goroutines and must not block.
type Observer func(State)

// Controller is safe for concurrent use. The lock is never held across a
// call to the Service.
type Controller struct {
	svc       Service
	logger    *slog.Logger
	scheduler schedule.Scheduler
	observer  Observer
	policy    ConnectivityPolicy

	mu          sync.Mutex
	messages    []models.Message
	connected   bool
	activity    models.ActivityState
	suggestions []string
	sending     bool
	convCtx     *client.ConversationContext
	status      client.Status
	speakTimer  schedule.Timer
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithScheduler sets the scheduler for the speaking→idle transition.
func WithScheduler(s schedule.Scheduler) Option {
	return func(c *Controller) { c.scheduler = s }
}

// WithObserver registers a state change callback.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// WithConnectivityPolicy sets how skill calls touch the connectivity flag.
func WithConnectivityPolicy(p ConnectivityPolicy) Option {
	return func(c *Controller) { c.policy = p }
}

// New creates an idle, disconnected controller with an empty log.
func New(svc Service, opts ...Option) *Controller {
	c := &Controller{
		svc:       svc,
		logger:    slog.Default(),
		scheduler: schedule.Real(),
		policy:    ConnectivityUniform,
		messages:  []models.Message{},
		status:    client.OfflineStatus(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize probes the service and seeds the log with exactly one message.
// History is never loaded here.
func (c *Controller) Initialize(ctx context.Context) {
	status := c.svc.GetStatus(ctx)

	c.mu.Lock()
	c.status = status
	c.connected = status.Online()
	if c.connected {
		c.messages = []models.Message{models.AssistantMessage(WelcomeText)}
	} else {
		c.messages = []models.Message{models.AssistantMessage(UnreachableText)}
	}
	c.mu.Unlock()

	if !status.Online() {
		c.logger.Warn("backend unreachable at startup")
	} else {
		c.logger.Info("backend online", "connection", status.Connection)
	}
	c.notify()
}

// Submit sends text as a chat message. It returns false without touching any
// state when text is blank, a send is already in flight, or the service is
// disconnected. Submit blocks until the reply (or failure) is in the log.
func (c *Controller) Submit(ctx context.Context, text string) bool {
	c.mu.Lock()
	if strings.TrimSpace(text) == "" || c.sending || !c.connected {
		c.mu.Unlock()
		return false
	}
	c.sending = true
	c.messages = append(c.messages, models.UserMessage(text))
	c.enterThinkingLocked()
	c.mu.Unlock()
	c.notify()

	start := time.Now()
	resp, err := c.svc.SendMessage(ctx, text)

	c.mu.Lock()
	c.sending = false
	if err != nil {
		c.messages = append(c.messages, models.AssistantMessage(ChatFailureText))
		c.activity = models.ActivityIdle
		c.connected = false
		c.mu.Unlock()

		c.logger.Warn("chat send failed", "op", "chat", "error", err, "duration", time.Since(start))
		c.notify()
		return true
	}

	c.messages = append(c.messages, models.AssistantMessage(resp.Response))
	if resp.Suggestions != nil {
		c.suggestions = models.CloneStrings(resp.Suggestions)
	}
	if resp.ConversationContext != nil {
		cc := *resp.ConversationContext
		c.convCtx = &cc
	}
	c.connected = true
	d := speakingDuration(resp)
	c.startSpeakingLocked(d)
	c.mu.Unlock()

	c.logger.Debug("chat reply received", "op", "chat", "duration", time.Since(start), "speak_for", d)
	c.notify()
	return true
}

// Clear empties the message log. Connectivity and activity are unchanged.
func (c *Controller) Clear() {
	c.mu.Lock()
	c.messages = []models.Message{}
	c.mu.Unlock()
	c.notify()
}

// ExecuteSkill runs a skill with query. Unlike Submit it is not guarded by
// the sending flag.
func (c *Controller) ExecuteSkill(ctx context.Context, skillID, query string) {
	c.mu.Lock()
	c.messages = append(c.messages, models.UserMessage(query))
	c.enterThinkingLocked()
	c.mu.Unlock()
	c.notify()

	res, err := c.svc.ExecuteSkill(ctx, skillID, query)

	c.mu.Lock()
	c.activity = models.ActivityIdle
	switch {
	case err != nil:
		c.messages = append(c.messages, models.AssistantMessage(SkillFailureText))
		if c.policy == ConnectivityUniform {
			c.connected = false
		}
	case res.Success:
		c.messages = append(c.messages, models.AssistantMessage(res.Result))
	default:
		msg := res.Error
		if msg == "" {
			msg = skillErrorFallback
		}
		c.messages = append(c.messages, models.AssistantMessage(SkillErrorPrefix+msg))
	}
	if err == nil && c.policy == ConnectivityUniform {
		c.connected = true
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("skill execution failed", "op", "skill", "skill_id", skillID, "error", err)
	} else if !res.Success {
		c.logger.Info("skill reported failure", "skill_id", skillID, "error", res.Error)
	}
	c.notify()
}

// RefreshStatus probes the service and updates the connectivity flag, so a
// client that lost the backend recovers once it answers again.
func (c *Controller) RefreshStatus(ctx context.Context) client.Status {
	status := c.svc.GetStatus(ctx)

	c.mu.Lock()
	changed := c.connected != status.Online()
	c.status = status
	c.connected = status.Online()
	c.mu.Unlock()

	if changed {
		c.logger.Info("connectivity changed", "connected", status.Online())
	}
	c.notify()
	return status
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close cancels a pending speaking→idle transition.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopSpeakingLocked()
}

func (c *Controller) snapshotLocked() State {
	s := State{
		Messages:    models.CloneMessages(c.messages),
		Connected:   c.connected,
		Activity:    c.activity,
		Suggestions: models.CloneStrings(c.suggestions),
		Sending:     c.sending,
		Status:      c.status,
	}
	if c.convCtx != nil {
		cc := *c.convCtx
		cc.RecentTopics = models.CloneStrings(cc.RecentTopics)
		s.Context = &cc
	}
	return s
}

// enterThinkingLocked starts a new turn. A speaking→idle transition left over
// from the previous turn is cancelled so it cannot cut the new one short.
func (c *Controller) enterThinkingLocked() {
	c.stopSpeakingLocked()
	c.activity = models.ActivityThinking
}

func (c *Controller) startSpeakingLocked(d time.Duration) {
	c.stopSpeakingLocked()
	c.activity = models.ActivitySpeaking

	var timer schedule.Timer
	timer = c.scheduler.AfterFunc(d, func() {
		c.mu.Lock()
		if c.speakTimer != timer {
			c.mu.Unlock()
			return
		}
		c.speakTimer = nil
		c.activity = models.ActivityIdle
		c.mu.Unlock()
		c.notify()
	})
	c.speakTimer = timer
}

func (c *Controller) stopSpeakingLocked() {
	if c.speakTimer != nil {
		c.speakTimer.Stop()
		c.speakTimer = nil
	}
}

func (c *Controller) notify() {
	if c.observer == nil {
		return
	}
	c.observer(c.Snapshot())
}

var sentenceBreaks = regexp.MustCompile(`[.!?]+`)

// sentenceCount counts the segments between terminators. Trailing empty
// segments count, so "Hi. Bye." is 3.
func sentenceCount(text string) int {
	return len(sentenceBreaks.Split(text, -1))
}

// speakingDuration is the declared speech duration when positive, otherwise
// two seconds per sentence.
func speakingDuration(resp *client.ChatResponse) time.Duration {
	if d, ok := resp.SpeechDuration(); ok {
		return d
	}
	return time.Duration(max(1, sentenceCount(resp.Response))) * perSentenceDuration
}
